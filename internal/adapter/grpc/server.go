package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hktikhin/personal-budget/internal/domain"
	"github.com/hktikhin/personal-budget/internal/usecase/envelope"
	"github.com/hktikhin/personal-budget/internal/usecase/ledger"
	"github.com/hktikhin/personal-budget/internal/usecase/summary"
)

// Server implements BudgetServiceServer on top of the use case services
type Server struct {
	EnvelopeService *envelope.Service
	LedgerService   *ledger.Service
	SummaryService  *summary.Service
	logger          *zap.Logger
}

var _ BudgetServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	envelopeService *envelope.Service,
	ledgerService *ledger.Service,
	summaryService *summary.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		EnvelopeService: envelopeService,
		LedgerService:   ledgerService,
		SummaryService:  summaryService,
		logger:          logger,
	}
}

func (s *Server) CreateEnvelope(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := envelopeInput(req)
	if err != nil {
		return nil, s.mapError(err)
	}
	e, err := s.EnvelopeService.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(envelopeStruct(e))
}

func (s *Server) GetEnvelope(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	e, err := s.EnvelopeService.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(envelopeStruct(e))
}

func (s *Server) ListEnvelopes(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	envelopes, err := s.EnvelopeService.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(envelopeListStruct(envelopes))
}

func (s *Server) ReplaceEnvelope(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	input, err := envelopeInput(req)
	if err != nil {
		return nil, s.mapError(err)
	}
	e, err := s.EnvelopeService.Replace(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(envelopeStruct(e))
}

func (s *Server) DeleteEnvelope(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := s.EnvelopeService.Delete(ctx, id); err != nil {
		return nil, s.mapError(err)
	}
	return &structpb.Struct{}, nil
}

func (s *Server) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := transactionInput(req)
	if err != nil {
		return nil, s.mapError(err)
	}
	tx, err := s.LedgerService.Create(ctx, input)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(transactionStruct(tx))
}

func (s *Server) GetTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	tx, err := s.LedgerService.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(transactionStruct(tx))
}

// ListTransactions lists every transaction, or only those touching
// envelope_id when the request names one
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	envelopeID, err := idField(req, "envelope_id")
	if err != nil {
		return nil, s.mapError(err)
	}

	var txs []*domain.Transaction
	if envelopeID != nil {
		txs, err = s.LedgerService.ListByEnvelope(ctx, *envelopeID)
	} else {
		txs, err = s.LedgerService.List(ctx)
	}
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(transactionListStruct(txs))
}

func (s *Server) UpdateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	input, err := transactionInput(req)
	if err != nil {
		return nil, s.mapError(err)
	}
	tx, err := s.LedgerService.Update(ctx, id, input)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(transactionStruct(tx))
}

func (s *Server) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "id")
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := s.LedgerService.Delete(ctx, id); err != nil {
		return nil, s.mapError(err)
	}
	return &structpb.Struct{}, nil
}

func (s *Server) GetSummary(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.SummaryService.Get(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return s.respond(summaryStruct(result))
}

func (s *Server) respond(out *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// mapError converts an error kind to a gRPC status. Store failures are
// logged and reported without their detail.
func (s *Server) mapError(err error) error {
	if err == nil {
		return nil
	}

	code := codeFor(err)
	if code == codes.Internal {
		s.logger.Error("request failed", zap.Error(err))
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidID):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrStakeholderMismatch),
		errors.Is(err, domain.ErrReferencedByTransaction):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
