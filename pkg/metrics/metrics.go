// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/productstore/pkg/logging"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// gRPC 请求计数
	GRPCRequestsTotal prometheus.Counter
	// gRPC 请求耗时
	GRPCRequestDuration prometheus.Histogram

	// 存储操作计数
	StorageOpsTotal prometheus.Counter
	// 存储操作耗时
	StorageOpDuration prometheus.Histogram
	// 是否处于降级（内存回退）模式
	StorageDegraded prometheus.Gauge

	// 业务指标
	ProductsCreated prometheus.Counter
	ProductsUpdated prometheus.Counter
	ProductsDeleted prometheus.Counter
	ProductsActive  prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		GRPCRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}),
		GRPCRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		StorageOpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "storage_ops_total",
			Help:      "Total storage operations",
		}),
		StorageOpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "storage_op_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		StorageDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "storage_degraded",
			Help:      "1 when the storage engine runs on the in-memory fallback",
		}),

		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "products_created_total",
			Help:      "Total products created",
		}),
		ProductsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "products_updated_total",
			Help:      "Total products updated",
		}),
		ProductsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "products_deleted_total",
			Help:      "Total products deleted",
		}),
		ProductsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "productstore",
			Subsystem: serviceName,
			Name:      "products_active",
			Help:      "Number of stored products",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	metrics := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.StorageOpsTotal,
		m.StorageOpDuration,
		m.StorageDegraded,
		m.ProductsCreated,
		m.ProductsUpdated,
		m.ProductsDeleted,
		m.ProductsActive,
	}

	for _, metric := range metrics {
		if err := prometheus.DefaultRegisterer.Register(metric); err != nil {
			logging.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logging.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logging.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logging.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
