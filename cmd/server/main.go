package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"

	grpcadapter "github.com/hktikhin/personal-budget/internal/adapter/grpc"
	httpadapter "github.com/hktikhin/personal-budget/internal/adapter/http"
	"github.com/hktikhin/personal-budget/internal/adapter/repository/sqlstore"
	"github.com/hktikhin/personal-budget/internal/config"
	"github.com/hktikhin/personal-budget/internal/logging"
	"github.com/hktikhin/personal-budget/internal/usecase/envelope"
	"github.com/hktikhin/personal-budget/internal/usecase/ledger"
	"github.com/hktikhin/personal-budget/internal/usecase/seeder"
	"github.com/hktikhin/personal-budget/internal/usecase/summary"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Setup Database
	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. Initialize Repositories
	envelopeRepo := sqlstore.NewEnvelopeRepository(db)
	transactionRepo := sqlstore.NewTransactionRepository(db)
	executor := sqlstore.NewExecutor(db, logger)

	// 3. Initialize Services (Use Cases)
	policy, err := envelope.ParseDeletePolicy(cfg.EnvelopeDeletePolicy)
	if err != nil {
		return err
	}
	envelopeService := envelope.NewService(envelopeRepo, executor, policy, logger)
	ledgerService := ledger.NewService(envelopeRepo, transactionRepo, executor, logger)
	summaryService := summary.NewService(envelopeRepo, transactionRepo)

	seeds, err := seeder.ParseSeedEnvelopes(cfg.SeedEnvelopes)
	if err != nil {
		return err
	}
	seeded, err := seeder.NewSeeder(envelopeRepo, seeds).Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed envelopes: %w", err)
	}
	if seeded > 0 {
		logger.Info("envelopes seeded", zap.Int("count", seeded))
	}

	// 4. Start HTTP and gRPC servers
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(envelopeService, ledgerService, summaryService, db, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpclib.NewServer(grpcadapter.ServerOptions(cfg.APIToken, logger)...)
	grpcadapter.RegisterBudgetServiceServer(grpcServer,
		grpcadapter.NewServer(envelopeService, ledgerService, summaryService, logger))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")
		return shutdown(httpServer, grpcServer, cfg.ShutdownTimeout)
	})

	return g.Wait()
}

// openDatabase applies migrations and connects, retrying while the database starts
func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstore.DB, error) {
	driver, err := sqlstore.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	dataSource := cfg.PostgresConnString()
	opts := sqlstore.Options{MaxOpenConns: cfg.DBMaxOpenConns}
	if driver == sqlstore.DriverSQLite {
		if dataSource, err = sqlstore.SQLiteDSN(cfg.SQLiteDBPath); err != nil {
			return nil, err
		}
		// one writer at a time
		opts.MaxOpenConns = 1
	}

	for attempt := 1; ; attempt++ {
		err = sqlstore.RunMigrations(driver, dataSource)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			return nil, err
		}
		logger.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	db, err := sqlstore.NewDB(ctx, driver, dataSource, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", string(driver)))
	return db, nil
}

// shutdown stops both servers, forcing the gRPC server once timeout elapses
func shutdown(httpServer *http.Server, grpcServer *grpclib.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	err := httpServer.Shutdown(ctx)

	select {
	case <-stopped:
	case <-ctx.Done():
		grpcServer.Stop()
	}
	return err
}
