// ProductStore 网关主程序
// 功能：对外提供 JSON HTTP API，所有请求通过 gRPC 转发给商品存储服务
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	httphandler "github.com/wyfcoding/productstore/internal/product/interfaces/http"
	"github.com/wyfcoding/productstore/pkg/cache"
	"github.com/wyfcoding/productstore/pkg/config"
	"github.com/wyfcoding/productstore/pkg/grpcclient"
	"github.com/wyfcoding/productstore/pkg/logging"
	"github.com/wyfcoding/productstore/pkg/metrics"
	"github.com/wyfcoding/productstore/pkg/middleware"
	"github.com/wyfcoding/productstore/pkg/ratelimit"
	"github.com/wyfcoding/productstore/pkg/trace"
)

func main() {
	// 1. 加载配置
	configPath := flag.String("config", "configs/gateway/config.toml", "path to config file")
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
	logging.Info(ctx, "Starting ProductStore gateway",
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

	// 4. 连接商品存储服务
	conn, err := grpcclient.NewClient(grpcclient.ClientConfig{
		Target:            cfg.Client.Target,
		ConnTimeout:       cfg.Client.ConnTimeout,
		RequestTimeout:    cfg.Client.RequestTimeout,
		MaxRetries:        cfg.Client.MaxRetries,
		RetryDelay:        cfg.Client.RetryDelay,
		EnableKeepalive:   true,
		KeepaliveInterval: 30,
		TLSCAFile:         cfg.Client.TLSCAFile,
		APIKey:            cfg.Auth.APIKey,
	})
	if err != nil {
		logging.Fatal(ctx, "Failed to create backend client", "target", cfg.Client.Target, "error", err)
	}
	defer conn.Close()
	client := pb.NewProductServiceClient(conn)

	// 5. 初始化指标
	if cfg.Metrics.Enabled {
		metricsInstance := metrics.New("gateway")
		if err := metricsInstance.Register(); err != nil {
			logging.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logging.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 6. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, client)

	// 7. 启动 HTTP 服务器
	go func() {
		logging.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr, "tls", cfg.HTTP.TLSCertFile != "")
		var err error
		if cfg.HTTP.TLSCertFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logging.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 8. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info(ctx, "Shutting down ProductStore gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "HTTP server shutdown error", "error", err)
	}
	logging.Info(ctx, "ProductStore gateway stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, client pb.ProductServiceClient) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(newRateLimiter(cfg), cfg.RateLimit))
	}
	handler := httphandler.NewProductHandler(client)
	if cfg.Auth.APIKey != "" {
		handler.RegisterRoutes(router, middleware.GinAuthMiddleware(cfg.Auth.APIKey))
	} else {
		handler.RegisterRoutes(router)
	}

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// newRateLimiter 按配置选择 Redis 或本地限流器
func newRateLimiter(cfg *config.Config) ratelimit.RateLimiter {
	if cfg.RateLimit.UseRedis {
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err == nil {
			return ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		}
		logging.Warn(context.Background(), "Redis rate limiter unavailable, using local limiter", "error", err)
	}
	return ratelimit.NewLocalRateLimiter()
}
