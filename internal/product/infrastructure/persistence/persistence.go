package persistence

import (
	"context"
	"fmt"

	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/memory"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/mysql"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/redis"
	"github.com/wyfcoding/productstore/pkg/cache"
	"github.com/wyfcoding/productstore/pkg/config"
	"github.com/wyfcoding/productstore/pkg/db"
	"github.com/wyfcoding/productstore/pkg/logging"
)

const (
	ModeDurable  = "durable"
	ModeInMemory = "in-memory"
)

// Engine 在启动时选定一个后端，之后不再切换
type Engine struct {
	domain.ProductRepository

	mode     string
	degraded bool
	closer   func() error
}

// NewEngine 按配置连接持久后端；连接失败且允许回退时降级到内存存储，
// 降级只在启动时发生一次，运行期间后端不变
func NewEngine(cfg *config.Config) (*Engine, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return &Engine{
			ProductRepository: memory.NewProductRepository(),
			mode:              ModeInMemory,
		}, nil
	case "redis":
		return newRedisEngine(cfg)
	case "mysql":
		return newMySQLEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

func newRedisEngine(cfg *config.Config) (*Engine, error) {
	c, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return fallback(cfg, "redis", err)
	}
	return &Engine{
		ProductRepository: redis.NewProductRepository(c),
		mode:              ModeDurable,
		closer:            c.Close,
	}, nil
}

func newMySQLEngine(cfg *config.Config) (*Engine, error) {
	database, err := db.Init(db.Config{
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return fallback(cfg, "mysql", err)
	}
	if err := database.AutoMigrate(&domain.Product{}); err != nil {
		_ = database.Close()
		return fallback(cfg, "mysql", err)
	}
	return &Engine{
		ProductRepository: mysql.NewProductRepository(database.DB),
		mode:              ModeDurable,
		closer:            database.Close,
	}, nil
}

func fallback(cfg *config.Config, driver string, cause error) (*Engine, error) {
	if !cfg.Storage.Fallback {
		return nil, fmt.Errorf("storage backend %s unavailable: %w", driver, cause)
	}
	logging.Warn(context.Background(), "storage backend unavailable, falling back to in-memory storage",
		"driver", driver, "error", cause.Error())
	return &Engine{
		ProductRepository: memory.NewProductRepository(),
		mode:              ModeInMemory,
		degraded:          true,
	}, nil
}

// Mode 返回当前存储模式，durable 或 in-memory
func (e *Engine) Mode() string { return e.mode }

// Degraded 报告是否发生过启动降级
func (e *Engine) Degraded() bool { return e.degraded }

func (e *Engine) Close() error {
	if e.closer != nil {
		return e.closer()
	}
	return nil
}
