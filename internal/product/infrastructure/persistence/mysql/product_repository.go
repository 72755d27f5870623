package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wyfcoding/productstore/internal/product/domain"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.AlreadyExistsErr(product.ID)
		}
		return domain.StorageErr(err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundErr(id)
		}
		return nil, domain.StorageErr(err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, domain.StorageErr(err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	// Select 强制写入零值字段，库存清零也要落库
	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "stock", "price").
		Updates(product)
	if result.Error != nil {
		return domain.StorageErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundErr(product.ID)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if result.Error != nil {
		return domain.StorageErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundErr(id)
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, domain.StorageErr(err)
	}
	return n, nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "1062")
}
