// mobilecart/main.go

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/norun9/mobilecart/cartstore"
	"github.com/norun9/mobilecart/config"
	"github.com/norun9/mobilecart/logging"
	"github.com/norun9/mobilecart/services"
	"github.com/norun9/mobilecart/storage"
	"github.com/norun9/mobilecart/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	// 1) OpenTelemetry TracerProvider
	tp, err := telemetry.InitTracerProvider(ctx, cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("error shutting down tracer provider")
		}
	}()
	log.WithField("exporter", cfg.TraceExporter).Info("TracerProvider initialized")

	// 2) Storage and the cart store on top of it
	st, err := storage.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create %s storage: %w", cfg.StorageBackend, err)
	}
	defer st.Close()
	log.WithField("backend", cfg.StorageBackend).Info("storage ready")

	opts := []cartstore.Option{
		cartstore.WithKey(cfg.CartKey),
		cartstore.WithLogger(log),
		cartstore.WithTracer(otel.Tracer("cartstore")),
	}
	if cfg.CartRemoveAtZero {
		opts = append(opts, cartstore.WithRemoveAtZero())
	}
	store := cartstore.New(st, opts...)
	defer store.Close()

	updates := store.Subscribe(nil)
	go func() {
		for cart := range updates {
			log.WithFields(logrus.Fields{
				"lines":    len(cart),
				"quantity": cart.TotalQuantity(),
			}).Info("cart published")
		}
	}()
	store.Initialize(ctx)

	// 3) gRPC server
	addr := fmt.Sprintf(":%s", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			services.LoggingInterceptor(log),
			services.ScopeInterceptor(store),
		),
	)
	services.RegisterCartServiceServer(grpcServer, services.NewCartServiceServer())
	healthpb.RegisterHealthServer(grpcServer, services.NewHealthCheckService(st, log))

	go func() {
		<-ctx.Done()
		log.Info("received shutdown signal, initiating graceful shutdown")
		grpcServer.GracefulStop()
	}()

	log.Infof("CartService gRPC server is listening on %s", addr)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC server: %w", err)
	}
	return nil
}
