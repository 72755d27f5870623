package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/productstore/internal/product/domain"
)

// productRepository 进程内存储，互斥锁保护底层映射
type productRepository struct {
	mu sync.RWMutex
	m  map[int64]domain.Product
}

func NewProductRepository() domain.ProductRepository {
	return &productRepository{m: make(map[int64]domain.Product)}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[product.ID]; ok {
		return domain.AlreadyExistsErr(product.ID)
	}
	r.m[product.ID] = *product
	return nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, domain.NotFoundErr(id)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := make([]*domain.Product, 0, len(r.m))
	for _, p := range r.m {
		p := p
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[product.ID]; !ok {
		return domain.NotFoundErr(product.ID)
	}
	r.m[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return domain.NotFoundErr(id)
	}
	delete(r.m, id)
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.m)), nil
}
