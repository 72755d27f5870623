package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	"github.com/wyfcoding/productstore/internal/product/application"
	"github.com/wyfcoding/productstore/internal/product/infrastructure/persistence/memory"
)

type fixedStatus struct{ mode string }

func (s fixedStatus) Mode() string   { return s.mode }
func (s fixedStatus) Degraded() bool { return s.mode == "in-memory" }

func newHandler(mode string) *Handler {
	svc := application.NewProductApplicationService(memory.NewProductRepository(), fixedStatus{mode: mode}, nil)
	return NewHandler(svc)
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected a grpc status error, got %v", err)
	}
	if st.Code() != code {
		t.Fatalf("expected code %s, got %s (%s)", code, st.Code(), st.Message())
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	h := newHandler("durable")
	ctx := context.Background()

	created, err := h.CreateProduct(ctx, &pb.Product{Id: 1, Name: "widget", Stock: 5, Price: 9.99})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created.Success || created.Product == nil || created.Product.Id != 1 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	got, err := h.GetProduct(ctx, &pb.GetProductRequest{Id: 1})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Product.Name != "widget" || got.Product.Stock != 5 || got.Product.Price != 9.99 {
		t.Fatalf("unexpected product: %+v", got.Product)
	}
}

func TestCreateProductInvalidArgument(t *testing.T) {
	h := newHandler("durable")
	_, err := h.CreateProduct(context.Background(), &pb.Product{Id: 0})
	wantCode(t, err, codes.InvalidArgument)

	_, err = h.CreateProduct(context.Background(), &pb.Product{Id: 1, Stock: -1})
	wantCode(t, err, codes.InvalidArgument)
}

func TestCreateProductAlreadyExists(t *testing.T) {
	h := newHandler("durable")
	ctx := context.Background()

	if _, err := h.CreateProduct(ctx, &pb.Product{Id: 2}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := h.CreateProduct(ctx, &pb.Product{Id: 2})
	wantCode(t, err, codes.AlreadyExists)
}

func TestGetProductNotFound(t *testing.T) {
	h := newHandler("durable")
	_, err := h.GetProduct(context.Background(), &pb.GetProductRequest{Id: 404})
	wantCode(t, err, codes.NotFound)
}

func TestListProducts(t *testing.T) {
	h := newHandler("durable")
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		if _, err := h.CreateProduct(ctx, &pb.Product{Id: id}); err != nil {
			t.Fatalf("create %d failed: %v", id, err)
		}
	}

	resp, err := h.ListProducts(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if resp.Total != 3 || len(resp.Products) != 3 {
		t.Fatalf("unexpected list response: total=%d len=%d", resp.Total, len(resp.Products))
	}
	for i, p := range resp.Products {
		if p.Id != int64(i+1) {
			t.Fatalf("list not sorted: position %d has id %d", i, p.Id)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	h := newHandler("durable")
	ctx := context.Background()

	_, err := h.UpdateProduct(ctx, &pb.UpdateProductRequest{})
	wantCode(t, err, codes.InvalidArgument)

	_, err = h.UpdateProduct(ctx, &pb.UpdateProductRequest{Product: &pb.Product{Id: 8, Name: "ghost"}})
	wantCode(t, err, codes.NotFound)

	if _, err := h.CreateProduct(ctx, &pb.Product{Id: 8, Name: "old"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp, err := h.UpdateProduct(ctx, &pb.UpdateProductRequest{Product: &pb.Product{Id: 8, Name: "new", Price: 2.5}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !resp.Success || resp.Product.Name != "new" {
		t.Fatalf("unexpected update response: %+v", resp)
	}
}

func TestDeleteProduct(t *testing.T) {
	h := newHandler("durable")
	ctx := context.Background()

	_, err := h.DeleteProduct(ctx, &pb.DeleteProductRequest{Id: 11})
	wantCode(t, err, codes.NotFound)

	if _, err := h.CreateProduct(ctx, &pb.Product{Id: 11}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp, err := h.DeleteProduct(ctx, &pb.DeleteProductRequest{Id: 11})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("unexpected delete response: %+v", resp)
	}

	_, err = h.GetProduct(ctx, &pb.GetProductRequest{Id: 11})
	wantCode(t, err, codes.NotFound)
}

func TestHealthCheckReportsMode(t *testing.T) {
	ctx := context.Background()

	durable := newHandler("durable")
	resp, err := durable.HealthCheck(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != "ok" || resp.StorageMode != "durable" {
		t.Fatalf("unexpected health response: %+v", resp)
	}

	degraded := newHandler("in-memory")
	resp, err = degraded.HealthCheck(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != "degraded" || resp.StorageMode != "in-memory" {
		t.Fatalf("expected degraded/in-memory health, got %+v", resp)
	}
}
