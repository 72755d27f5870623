package application

import (
	"context"
	"time"

	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/pkg/metrics"
)

// StorageStatus 上报存储引擎当前模式，由持久层引擎实现
type StorageStatus interface {
	Mode() string
	Degraded() bool
}

type ProductApplicationService struct {
	repo    domain.ProductRepository
	status  StorageStatus
	metrics *metrics.Metrics
}

func NewProductApplicationService(repo domain.ProductRepository, status StorageStatus, m *metrics.Metrics) *ProductApplicationService {
	return &ProductApplicationService{repo: repo, status: status, metrics: m}
}

func (s *ProductApplicationService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.observe(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, product)
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ProductsCreated.Inc()
		s.metrics.ProductsActive.Inc()
	}
	return product, nil
}

func (s *ProductApplicationService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewInvalidArgument("id must be a positive integer")
	}
	var product *domain.Product
	err := s.observe(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.repo.Get(ctx, id)
		return err
	})
	return product, err
}

func (s *ProductApplicationService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.observe(ctx, func(ctx context.Context) error {
		var err error
		products, err = s.repo.List(ctx)
		return err
	})
	return products, err
}

func (s *ProductApplicationService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.observe(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, product)
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ProductsUpdated.Inc()
	}
	return product, nil
}

func (s *ProductApplicationService) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.NewInvalidArgument("id must be a positive integer")
	}
	if err := s.observe(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ProductsDeleted.Inc()
		s.metrics.ProductsActive.Dec()
	}
	return nil
}

// Health 返回服务状态与存储模式；启动降级后状态为 degraded
func (s *ProductApplicationService) Health(ctx context.Context) (status, storageMode string) {
	if s.status == nil {
		return "ok", "in-memory"
	}
	if s.status.Degraded() {
		return "degraded", s.status.Mode()
	}
	return "ok", s.status.Mode()
}

func (s *ProductApplicationService) observe(ctx context.Context, op func(context.Context) error) error {
	if s.metrics == nil {
		return op(ctx)
	}
	start := time.Now()
	err := op(ctx)
	s.metrics.StorageOpsTotal.Inc()
	s.metrics.StorageOpDuration.Observe(time.Since(start).Seconds())
	return err
}
