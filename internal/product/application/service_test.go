package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/memory"
)

type stubStatus struct {
	mode     string
	degraded bool
}

func (s stubStatus) Mode() string   { return s.mode }
func (s stubStatus) Degraded() bool { return s.degraded }

func newService() *ProductApplicationService {
	return NewProductApplicationService(memory.NewProductRepository(), stubStatus{mode: "durable"}, nil)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name    string
		product *domain.Product
	}{
		{"zero id", &domain.Product{ID: 0}},
		{"negative id", &domain.Product{ID: -1}},
		{"negative stock", &domain.Product{ID: 1, Stock: -1}},
		{"negative price", &domain.Product{ID: 1, Price: -0.01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.product)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	// rejected products must never reach storage
	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateProductDefaults(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, &domain.Product{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "", created.Name)
	assert.Equal(t, int64(0), created.Stock)
	assert.Equal(t, 0.0, created.Price)
}

func TestCreateDuplicateRejected(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &domain.Product{ID: 1, Name: "first"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &domain.Product{ID: 1, Name: "second"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestGetProductErrors(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.GetProduct(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, &domain.Product{ID: 5, Name: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateProduct(ctx, &domain.Product{ID: 5, Name: "old", Stock: 3})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, &domain.Product{ID: 5, Name: "new", Stock: 0, Price: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)

	got, err := svc.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)
	assert.Equal(t, 1.5, got.Price)
}

func TestDeleteProduct(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	err := svc.DeleteProduct(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = svc.DeleteProduct(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateProduct(ctx, &domain.Product{ID: 9})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, 9))

	_, err = svc.GetProduct(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProductsSorted(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		_, err := svc.CreateProduct(ctx, &domain.Product{ID: id})
		require.NoError(t, err)
	}

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	for i, p := range products {
		assert.Equal(t, int64(i+1), p.ID)
	}
}

func TestHealthReportsStorageMode(t *testing.T) {
	ctx := context.Background()

	durable := NewProductApplicationService(memory.NewProductRepository(), stubStatus{mode: "durable"}, nil)
	status, mode := durable.Health(ctx)
	assert.Equal(t, "ok", status)
	assert.Equal(t, "durable", mode)

	// a startup fallback must surface as degraded, not ok
	degraded := NewProductApplicationService(memory.NewProductRepository(), stubStatus{mode: "in-memory", degraded: true}, nil)
	status, mode = degraded.Health(ctx)
	assert.Equal(t, "degraded", status)
	assert.Equal(t, "in-memory", mode)

	// an explicitly configured memory driver is healthy
	explicit := NewProductApplicationService(memory.NewProductRepository(), stubStatus{mode: "in-memory", degraded: false}, nil)
	status, mode = explicit.Health(ctx)
	assert.Equal(t, "ok", status)
	assert.Equal(t, "in-memory", mode)
}
