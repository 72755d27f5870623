// 包 http 实现面向外部的 JSON 网关，内部通过 gRPC 访问商品服务
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	pb "github.com/wyfcoding/productstore/go-api/product/v1"
	"github.com/wyfcoding/productstore/pkg/logging"
	"github.com/wyfcoding/productstore/pkg/response"
	"github.com/wyfcoding/productstore/pkg/utils"
)

const defaultListLimit = 50

// ProductHandler HTTP 处理器
// 本身不含业务逻辑，请求一律转发给商品 gRPC 服务
type ProductHandler struct {
	client pb.ProductServiceClient
}

func NewProductHandler(client pb.ProductServiceClient) *ProductHandler {
	return &ProductHandler{client: client}
}

// RegisterRoutes 注册路由；额外的中间件只作用于商品路由，健康检查保持开放
func (h *ProductHandler) RegisterRoutes(router *gin.Engine, mws ...gin.HandlerFunc) {
	products := router.Group("/products", mws...)
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
	router.GET("/health", h.Health)
}

type productRequest struct {
	ID          int64   `json:"id" binding:"required,gt=0"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Stock       int64   `json:"stock" binding:"gte=0"`
	Price       float64 `json:"price" binding:"gte=0"`
}

// updateProductRequest 更新请求体；id 由路径提供，请求体中可省略
type updateProductRequest struct {
	ID          int64   `json:"id" binding:"omitempty,gt=0"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Stock       int64   `json:"stock" binding:"gte=0"`
	Price       float64 `json:"price" binding:"gte=0"`
}

func toView(p *pb.Product) gin.H {
	return gin.H{
		"id":          p.Id,
		"name":        p.Name,
		"description": p.Description,
		"stock":       p.Stock,
		"price":       p.Price,
	}
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	resp, err := h.client.CreateProduct(c.Request.Context(), &pb.Product{
		Id:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		Price:       req.Price,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, gin.H{
		"product": toView(resp.Product),
		"message": resp.Message,
	})
}

// GetProduct 按 id 获取商品
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.client.GetProduct(c.Request.Context(), &pb.GetProductRequest{Id: id})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"product": toView(resp.Product)})
}

// ListProducts 列出全部商品，分页在网关侧完成
func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_argument", "invalid limit")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_argument", "invalid offset")
		return
	}

	resp, err := h.client.ListProducts(c.Request.Context(), &emptypb.Empty{})
	if err != nil {
		h.writeError(c, err)
		return
	}

	start, end := utils.Paginate(len(resp.Products), limit, offset, defaultListLimit)
	products := make([]gin.H, 0, end-start)
	for _, p := range resp.Products[start:end] {
		products = append(products, toView(p))
	}

	response.Success(c, gin.H{
		"products": products,
		"total":    resp.Total,
	})
}

// UpdateProduct 整体更新商品，路径 id 优先于请求体
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	if req.ID != 0 && req.ID != id {
		response.Error(c, http.StatusBadRequest, "invalid_argument", "body id does not match path id")
		return
	}

	resp, err := h.client.UpdateProduct(c.Request.Context(), &pb.UpdateProductRequest{
		Product: &pb.Product{
			Id:          id,
			Name:        req.Name,
			Description: req.Description,
			Stock:       req.Stock,
			Price:       req.Price,
		},
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"product": toView(resp.Product),
		"message": resp.Message,
	})
}

// DeleteProduct 按 id 删除商品
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.client.DeleteProduct(c.Request.Context(), &pb.DeleteProductRequest{Id: id})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"message": resp.Message})
}

// Health 透传后端健康状态，后端不可达时报告 unreachable
func (h *ProductHandler) Health(c *gin.Context) {
	resp, err := h.client.HealthCheck(c.Request.Context(), &emptypb.Empty{})
	if err != nil {
		logging.Error(c.Request.Context(), "health check against backend failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       resp.Status,
		"storage_mode": resp.StorageMode,
	})
}

func (h *ProductHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid_argument", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// writeError 将 gRPC 状态码映射为 HTTP 状态码与错误种类
func (h *ProductHandler) writeError(c *gin.Context, err error) {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		response.Error(c, http.StatusBadRequest, "invalid_argument", st.Message())
	case codes.NotFound:
		response.Error(c, http.StatusNotFound, "not_found", st.Message())
	case codes.AlreadyExists:
		response.Error(c, http.StatusConflict, "already_exists", st.Message())
	case codes.Unavailable:
		response.Error(c, http.StatusServiceUnavailable, "storage_unavailable", st.Message())
	case codes.Unauthenticated:
		response.Error(c, http.StatusUnauthorized, "unauthenticated", st.Message())
	default:
		logging.Error(c.Request.Context(), "backend call failed", "code", st.Code().String(), "error", err)
		response.Error(c, http.StatusInternalServerError, "internal", st.Message())
	}
}
