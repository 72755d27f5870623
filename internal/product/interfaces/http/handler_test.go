package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	"github.com/wyfcoding/productstore/internal/product/application"
	grpchandler "github.com/wyfcoding/productstore/internal/product/interfaces/grpc"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testStatus struct{ mode string }

func (s testStatus) Mode() string   { return s.mode }
func (s testStatus) Degraded() bool { return s.mode == "in-memory" }

// localClient satisfies ProductServiceClient by invoking the server handler
// in-process, so the gateway is tested against real backend semantics.
type localClient struct{ h *grpchandler.Handler }

func (c *localClient) CreateProduct(ctx context.Context, in *pb.Product, _ ...grpc.CallOption) (*pb.CreateProductResponse, error) {
	return c.h.CreateProduct(ctx, in)
}

func (c *localClient) GetProduct(ctx context.Context, in *pb.GetProductRequest, _ ...grpc.CallOption) (*pb.GetProductResponse, error) {
	return c.h.GetProduct(ctx, in)
}

func (c *localClient) ListProducts(ctx context.Context, in *emptypb.Empty, _ ...grpc.CallOption) (*pb.ListProductsResponse, error) {
	return c.h.ListProducts(ctx, in)
}

func (c *localClient) UpdateProduct(ctx context.Context, in *pb.UpdateProductRequest, _ ...grpc.CallOption) (*pb.UpdateProductResponse, error) {
	return c.h.UpdateProduct(ctx, in)
}

func (c *localClient) DeleteProduct(ctx context.Context, in *pb.DeleteProductRequest, _ ...grpc.CallOption) (*pb.DeleteProductResponse, error) {
	return c.h.DeleteProduct(ctx, in)
}

func (c *localClient) HealthCheck(ctx context.Context, in *emptypb.Empty, _ ...grpc.CallOption) (*pb.HealthCheckResponse, error) {
	return c.h.HealthCheck(ctx, in)
}

// downClient simulates a backend the gateway cannot reach.
type downClient struct{}

func (downClient) CreateProduct(context.Context, *pb.Product, ...grpc.CallOption) (*pb.CreateProductResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func (downClient) GetProduct(context.Context, *pb.GetProductRequest, ...grpc.CallOption) (*pb.GetProductResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func (downClient) ListProducts(context.Context, *emptypb.Empty, ...grpc.CallOption) (*pb.ListProductsResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func (downClient) UpdateProduct(context.Context, *pb.UpdateProductRequest, ...grpc.CallOption) (*pb.UpdateProductResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func (downClient) DeleteProduct(context.Context, *pb.DeleteProductRequest, ...grpc.CallOption) (*pb.DeleteProductResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func (downClient) HealthCheck(context.Context, *emptypb.Empty, ...grpc.CallOption) (*pb.HealthCheckResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func newRouter(mode string) *gin.Engine {
	svc := application.NewProductApplicationService(memory.NewProductRepository(), testStatus{mode: mode}, nil)
	client := &localClient{h: grpchandler.NewHandler(svc)}
	router := gin.New()
	NewProductHandler(client).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestProductLifecycle(t *testing.T) {
	router := newRouter("durable")

	// create
	w, body := doJSON(t, router, http.MethodPost, "/products", gin.H{
		"id": 1, "name": "widget", "description": "a widget", "stock": 5, "price": 9.99,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	product := body["product"].(map[string]any)
	assert.Equal(t, float64(1), product["id"])
	assert.Equal(t, "widget", product["name"])

	// read it back
	w, body = doJSON(t, router, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product = body["product"].(map[string]any)
	assert.Equal(t, "widget", product["name"])
	assert.Equal(t, float64(5), product["stock"])

	// delete
	w, body = doJSON(t, router, http.MethodDelete, "/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	// gone
	w, body = doJSON(t, router, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "not_found", errBody["kind"])
}

func TestCreateDuplicateConflict(t *testing.T) {
	router := newRouter("durable")

	w, _ := doJSON(t, router, http.MethodPost, "/products", gin.H{"id": 1, "name": "first"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := doJSON(t, router, http.MethodPost, "/products", gin.H{"id": 1, "name": "second"})
	require.Equal(t, http.StatusConflict, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "already_exists", errBody["kind"])

	// the original record survives
	w, body = doJSON(t, router, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first", body["product"].(map[string]any)["name"])
}

func TestCreateValidation(t *testing.T) {
	router := newRouter("durable")

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing id", gin.H{"name": "x"}},
		{"zero id", gin.H{"id": 0}},
		{"negative stock", gin.H{"id": 1, "stock": -1}},
		{"negative price", gin.H{"id": 1, "price": -1.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := doJSON(t, router, http.MethodPost, "/products", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			errBody := body["error"].(map[string]any)
			assert.Equal(t, "invalid_argument", errBody["kind"])
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	router := newRouter("durable")

	for _, path := range []string{"/products/abc", "/products/-1", "/products/0"} {
		w, _ := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestListWithPagination(t *testing.T) {
	router := newRouter("durable")

	for id := 1; id <= 5; id++ {
		w, _ := doJSON(t, router, http.MethodPost, "/products", gin.H{"id": id})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, body := doJSON(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), body["total"])
	assert.Len(t, body["products"].([]any), 5)

	w, body = doJSON(t, router, http.MethodGet, "/products?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := body["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, float64(2), products[0].(map[string]any)["id"])
	assert.Equal(t, float64(3), products[1].(map[string]any)["id"])

	w, _ = doJSON(t, router, http.MethodGet, "/products?limit=oops", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProductRoute(t *testing.T) {
	router := newRouter("durable")

	w, _ := doJSON(t, router, http.MethodPut, "/products/7", gin.H{"id": 7, "name": "ghost"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/products", gin.H{"id": 7, "name": "old", "stock": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := doJSON(t, router, http.MethodPut, "/products/7", gin.H{"id": 7, "name": "new", "price": 3.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new", body["product"].(map[string]any)["name"])

	w, body = doJSON(t, router, http.MethodGet, "/products/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := body["product"].(map[string]any)
	assert.Equal(t, float64(3.5), product["price"])
	// full replacement: omitted fields reset to their zero values
	assert.Equal(t, float64(0), product["stock"])
}

func TestUpdateBodyIDOptional(t *testing.T) {
	router := newRouter("durable")

	w, _ := doJSON(t, router, http.MethodPost, "/products", gin.H{"id": 4, "name": "old"})
	require.Equal(t, http.StatusCreated, w.Code)

	// the path supplies the id; the body may omit it
	w, body := doJSON(t, router, http.MethodPut, "/products/4", gin.H{"name": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", body["product"].(map[string]any)["name"])

	// an echoed id must match the path
	w, body = doJSON(t, router, http.MethodPut, "/products/4", gin.H{"id": 5, "name": "other"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_argument", body["error"].(map[string]any)["kind"])
}

func TestHealthReportsStorageMode(t *testing.T) {
	w, body := doJSON(t, newRouter("durable"), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "durable", body["storage_mode"])

	// backend running on the fallback store reports degraded over the same route
	w, body = doJSON(t, newRouter("in-memory"), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "in-memory", body["storage_mode"])
}

func TestBackendUnreachable(t *testing.T) {
	router := gin.New()
	NewProductHandler(downClient{}).RegisterRoutes(router)

	w, body := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unreachable", body["status"])

	w, body = doJSON(t, router, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "storage_unavailable", errBody["kind"])
}
