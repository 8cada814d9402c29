package dto

import (
	"shopfarm_v1/internal/model"
)

// ==================== 请求 DTO ====================

// AttributeSelectionInput 商品选择的属性与值子集
type AttributeSelectionInput struct {
	AttributeID int64   `json:"attribute_id" binding:"required"`
	ValueIDs    []int64 `json:"value_ids" binding:"required,min=1"`
}

// CreateProductReq 创建商品请求
// multipart 提交时 product_attributes / variants 字段为 JSON 字符串，
// 由控制器先行解析；JSON 请求则直接绑定
type CreateProductReq struct {
	StoreID int64 `json:"store_id" binding:"required"`

	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`

	// 价格：前端传小数，服务层转分
	Price     float64 `json:"price" binding:"gte=0"`
	SalePrice float64 `json:"sale_price" binding:"gte=0"`
	IsOnSale  bool    `json:"is_on_sale"`
	Currency  string  `json:"currency"` // 默认 USD

	Stock int `json:"stock" binding:"gte=0"`

	CategoryID    int64 `json:"category_id"`
	SubCategoryID int64 `json:"sub_category_id"`

	Tags []string `json:"tags"`

	ProductAttributes []AttributeSelectionInput `json:"product_attributes"`
	Variants          []ProductVariantInput     `json:"variants"`
}

// UpdateProductReq 更新商品请求 (指针字段缺席即不改)
type UpdateProductReq struct {
	ID      int64 `json:"-"`
	StoreID int64 `json:"store_id" binding:"required"`

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	Price     *float64 `json:"price,omitempty"`
	SalePrice *float64 `json:"sale_price,omitempty"`
	IsOnSale  *bool    `json:"is_on_sale,omitempty"`

	Stock *int `json:"stock,omitempty"`
	// 显式置 false 会清空变体并回到简单模式 (单向数据丢弃)
	HasVariants *bool `json:"has_variants,omitempty"`

	CategoryID    *int64 `json:"category_id,omitempty"`
	SubCategoryID *int64 `json:"sub_category_id,omitempty"`

	Tags []string `json:"tags,omitempty"`

	State *string `json:"state,omitempty"`

	ProductAttributes []AttributeSelectionInput `json:"product_attributes,omitempty"`
	Variants          []ProductVariantInput     `json:"variants,omitempty"`

	// multipart 解析标记：字段出现过才应用 (空数组 ≠ 缺席)
	HasProductAttributes bool `json:"-"`
	HasVariantsPayload   bool `json:"-"`
}

// ==================== 响应 DTO ====================

// ProductResp 商品响应
type ProductResp struct {
	ID            int64  `json:"id"`
	StoreID       int64  `json:"store_id"`
	CategoryID    int64  `json:"category_id"`
	SubCategoryID int64  `json:"sub_category_id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`

	Price     float64 `json:"price"`
	SalePrice float64 `json:"sale_price"`
	IsOnSale  bool    `json:"is_on_sale"`
	Currency  string  `json:"currency"`

	Stock       int  `json:"stock"`
	HasVariants bool `json:"has_variants"`
	TotalStock  int  `json:"total_stock"`

	ProductAttributes model.SelectionList    `json:"product_attributes"`
	Variants          []model.ProductVariant `json:"variants"`

	Images []string `json:"images"`
	Tags   []string `json:"tags"`

	State      string `json:"state"`
	ViewCount  int64  `json:"view_count"`
	OrderCount int64  `json:"order_count"`
}

// ProductListResp 商品列表响应
type ProductListResp struct {
	Code     int           `json:"code"`
	Message  string        `json:"message"`
	Data     []ProductResp `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
