package dto

// ==================== 变体请求 DTO ====================

// VariantAttributeInput 变体属性取值 (整表替换时由前端回传)
type VariantAttributeInput struct {
	AttributeID   int64  `json:"attribute_id" binding:"required"`
	AttributeName string `json:"attribute_name"`
	ValueID       int64  `json:"value_id" binding:"required"`
	Value         string `json:"value"`
	ColorHex      string `json:"color_hex"`
}

// ProductVariantInput 变体录入 (批量替换 / 创建商品时)
// Stock 缺席按 0，Images 缺席按空，IsActive 缺席按 true
type ProductVariantInput struct {
	ID         string                  `json:"id"`
	SKU        string                  `json:"sku"`
	Attributes []VariantAttributeInput `json:"attributes" binding:"required,min=1"`
	Price      *float64                `json:"price"`
	SalePrice  *float64                `json:"sale_price"`
	Stock      *int                    `json:"stock"`
	Images     []string                `json:"images"`
	IsActive   *bool                   `json:"is_active"`
}

// BulkVariantsReq 批量变体请求
// regenerate=true 时忽略 variants 走生成器；否则 variants 整表替换
type BulkVariantsReq struct {
	Regenerate bool                  `json:"regenerate"`
	Variants   []ProductVariantInput `json:"variants"`
}

// UpdateVariantReq 单变体部分更新 (指针字段缺席即不改)
type UpdateVariantReq struct {
	SKU       *string   `json:"sku,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	SalePrice *float64  `json:"sale_price,omitempty"`
	Stock     *int      `json:"stock,omitempty"`
	Images    *[]string `json:"images,omitempty"`
	IsActive  *bool     `json:"is_active,omitempty"`
}
