// ProductStore 商品存储服务主程序
// 功能：商品的创建、查询、列表、更新、删除，通过 gRPC 对外提供
// 架构：DDD 分层，持久后端可在启动时降级到内存存储
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/reflection"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	"github.com/wyfcoding/productstore/internal/product/application"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence"
	grpchandler "github.com/wyfcoding/productstore/internal/product/interfaces/grpc"
	"github.com/wyfcoding/productstore/pkg/config"
	"github.com/wyfcoding/productstore/pkg/logging"
	"github.com/wyfcoding/productstore/pkg/metrics"
	"github.com/wyfcoding/productstore/pkg/middleware"
	"github.com/wyfcoding/productstore/pkg/trace"
)

func main() {
	// 1. 加载配置
	configPath := flag.String("config", "configs/server/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logging.Init(logging.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logging.Info(ctx, "Starting ProductStore server",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logging.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logging.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化存储引擎，后端选择在这里一次性决定
	engine, err := persistence.NewEngine(cfg)
	if err != nil {
		logging.Fatal(ctx, "Failed to initialize storage engine", "error", err)
	}
	defer engine.Close()
	logging.Info(ctx, "Storage engine ready", "mode", engine.Mode(), "degraded", engine.Degraded())

	// 5. 初始化指标
	var metricsInstance *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsInstance = metrics.New("server")
		if err := metricsInstance.Register(); err != nil {
			logging.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logging.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
		if engine.Degraded() {
			metricsInstance.StorageDegraded.Set(1)
		}
	}

	// 6. 初始化应用服务
	appService := application.NewProductApplicationService(engine, engine, metricsInstance)

	// 7. 创建 gRPC 服务器
	grpcServer, err := createGRPCServer(cfg, appService)
	if err != nil {
		logging.Fatal(ctx, "Failed to create gRPC server", "error", err)
	}

	// 8. 启动 gRPC 服务器
	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logging.Fatal(ctx, "Failed to listen on gRPC address", "addr", addr, "error", err)
	}
	go func() {
		logging.Info(ctx, "Starting gRPC server", "addr", addr, "tls", cfg.GRPC.TLSCertFile != "")
		if err := grpcServer.Serve(listener); err != nil {
			logging.Fatal(ctx, "gRPC server error", "error", err)
		}
	}()

	// 9. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info(ctx, "Shutting down ProductStore server")
	grpcServer.GracefulStop()
	logging.Info(ctx, "ProductStore server stopped")
}

// createGRPCServer 创建 gRPC 服务器
func createGRPCServer(cfg *config.Config, appService *application.ProductApplicationService) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCAuthInterceptor(cfg.Auth.APIKey),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	}

	if cfg.GRPC.TLSCertFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.GRPC.TLSCertFile, cfg.GRPC.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	server := grpc.NewServer(opts...)
	pb.RegisterProductServiceServer(server, grpchandler.NewHandler(appService))
	reflection.Register(server)
	return server, nil
}
