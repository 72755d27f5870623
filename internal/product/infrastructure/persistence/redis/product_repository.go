package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/pkg/cache"
)

const keyPrefix = "product:"

// productRepository 持久后端，记录以 product:<id> 为 key 的扁平 JSON 存储
type productRepository struct {
	cache *cache.RedisCache
}

func NewProductRepository(c *cache.RedisCache) domain.ProductRepository {
	return &productRepository{cache: c}
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return domain.StorageErr(err)
	}
	// SetNX 保证并发创建只有一个成功
	ok, err := r.cache.SetNX(ctx, productKey(product.ID), string(data), 0)
	if err != nil {
		return domain.StorageErr(err)
	}
	if !ok {
		return domain.AlreadyExistsErr(product.ID)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	found, err := r.cache.GetJSON(ctx, productKey(id), &p)
	if err != nil {
		return nil, domain.StorageErr(err)
	}
	if !found {
		return nil, domain.NotFoundErr(id)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	keys, err := r.cache.ScanKeys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, domain.StorageErr(err)
	}
	if len(keys) == 0 {
		return []*domain.Product{}, nil
	}

	vals, err := r.cache.MGet(ctx, keys...)
	if err != nil {
		return nil, domain.StorageErr(err)
	}

	products := make([]*domain.Product, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// MGet 窗口内被删除的 key
			continue
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, domain.StorageErr(err)
		}
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return domain.StorageErr(err)
	}
	// SetXX 保证更新不会复活已删除的记录
	ok, err := r.cache.SetXX(ctx, productKey(product.ID), string(data), 0)
	if err != nil {
		return domain.StorageErr(err)
	}
	if !ok {
		return domain.NotFoundErr(product.ID)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.cache.Delete(ctx, productKey(id))
	if err != nil {
		return domain.StorageErr(err)
	}
	if n == 0 {
		return domain.NotFoundErr(id)
	}
	return nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	keys, err := r.cache.ScanKeys(ctx, keyPrefix+"*")
	if err != nil {
		return 0, domain.StorageErr(err)
	}
	return int64(len(keys)), nil
}
