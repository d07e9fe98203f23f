package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// bindJSON decodes the request body, classifying malformed payloads as invalid input
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := domain.ParseID(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return id, nil
}

func (s *Server) listEnvelopes(c *gin.Context) {
	envelopes, err := s.envelopeService.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEnvelopeResponses(envelopes))
}

func (s *Server) createEnvelope(c *gin.Context) {
	var req envelopeRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	created, err := s.envelopeService.Create(c.Request.Context(), req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEnvelopeResponse(created))
}

func (s *Server) getEnvelope(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	found, err := s.envelopeService.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEnvelopeResponse(found))
}

func (s *Server) replaceEnvelope(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req envelopeRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	replaced, err := s.envelopeService.Replace(c.Request.Context(), id, req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEnvelopeResponse(replaced))
}

func (s *Server) deleteEnvelope(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.envelopeService.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listEnvelopeTransactions(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	txs, err := s.ledgerService.ListByEnvelope(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponses(txs))
}

func (s *Server) extract(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req amountRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.ledgerService.Extract(c.Request.Context(), id, req.TransactionAmount, req.Title)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) transfer(c *gin.Context) {
	from, err := pathID(c, "from")
	if err != nil {
		s.writeError(c, err)
		return
	}
	to, err := pathID(c, "to")
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req amountRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.ledgerService.Transfer(c.Request.Context(), from, to, req.TransactionAmount, req.Title)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) listTransactions(c *gin.Context) {
	txs, err := s.ledgerService.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponses(txs))
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.ledgerService.Create(c.Request.Context(), req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) getTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.ledgerService.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req transactionRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.ledgerService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponse(tx))
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.ledgerService.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
