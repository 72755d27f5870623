// 包 grpc 实现商品服务的 gRPC 处理器
package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	"github.com/wyfcoding/productstore/internal/product/application"
	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/pkg/logging"
)

// Handler gRPC 处理器
type Handler struct {
	pb.UnimplementedProductServiceServer
	service *application.ProductApplicationService
}

func NewHandler(service *application.ProductApplicationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateProduct(ctx context.Context, req *pb.Product) (*pb.CreateProductResponse, error) {
	product, err := h.service.CreateProduct(ctx, fromProto(req))
	if err != nil {
		logging.Warn(ctx, "CreateProduct failed", "id", req.Id, "error", err)
		return nil, toStatus(err)
	}
	logging.Info(ctx, "product created", "id", product.ID)
	return &pb.CreateProductResponse{
		Success: true,
		Product: toProto(product),
		Message: "product created",
	}, nil
}

func (h *Handler) GetProduct(ctx context.Context, req *pb.GetProductRequest) (*pb.GetProductResponse, error) {
	product, err := h.service.GetProduct(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetProductResponse{Product: toProto(product)}, nil
}

func (h *Handler) ListProducts(ctx context.Context, _ *emptypb.Empty) (*pb.ListProductsResponse, error) {
	products, err := h.service.ListProducts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &pb.ListProductsResponse{
		Products: make([]*pb.Product, 0, len(products)),
		Total:    int32(len(products)),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProto(p))
	}
	return resp, nil
}

func (h *Handler) UpdateProduct(ctx context.Context, req *pb.UpdateProductRequest) (*pb.UpdateProductResponse, error) {
	if req.Product == nil {
		return nil, status.Error(codes.InvalidArgument, "product is required")
	}
	product, err := h.service.UpdateProduct(ctx, fromProto(req.Product))
	if err != nil {
		logging.Warn(ctx, "UpdateProduct failed", "id", req.Product.Id, "error", err)
		return nil, toStatus(err)
	}
	return &pb.UpdateProductResponse{
		Success: true,
		Product: toProto(product),
		Message: "product updated",
	}, nil
}

func (h *Handler) DeleteProduct(ctx context.Context, req *pb.DeleteProductRequest) (*pb.DeleteProductResponse, error) {
	if err := h.service.DeleteProduct(ctx, req.Id); err != nil {
		logging.Warn(ctx, "DeleteProduct failed", "id", req.Id, "error", err)
		return nil, toStatus(err)
	}
	logging.Info(ctx, "product deleted", "id", req.Id)
	return &pb.DeleteProductResponse{
		Success: true,
		Message: "product deleted",
	}, nil
}

func (h *Handler) HealthCheck(ctx context.Context, _ *emptypb.Empty) (*pb.HealthCheckResponse, error) {
	st, mode := h.service.Health(ctx)
	return &pb.HealthCheckResponse{Status: st, StorageMode: mode}, nil
}

func toProto(p *domain.Product) *pb.Product {
	return &pb.Product{
		Id:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Stock:       p.Stock,
		Price:       p.Price,
	}
}

func fromProto(p *pb.Product) *domain.Product {
	return &domain.Product{
		ID:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Stock:       p.Stock,
		Price:       p.Price,
	}
}

// toStatus 将领域错误映射为 gRPC 状态码
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
