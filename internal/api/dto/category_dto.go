package dto

// ==================== 分类 DTO ====================

// CreateCategoryReq 创建分类请求 (管理员)
type CreateCategoryReq struct {
	Name      string            `json:"name" binding:"required,max=100"`
	NameTr    map[string]string `json:"name_tr"`
	Slug      string            `json:"slug" binding:"omitempty,max=100"`
	ParentID  int64             `json:"parent_id"`
	SortOrder int               `json:"sort_order"`
}

// CategoryResp 分类响应 (含分面统计)
type CategoryResp struct {
	ID                  int64          `json:"id"`
	Name                string         `json:"name"`
	Slug                string         `json:"slug"`
	ParentID            int64          `json:"parent_id"`
	ProductCount        int64          `json:"product_count"`
	VariantProductCount int64          `json:"variant_product_count"`
	Children            []CategoryResp `json:"children,omitempty"`
}

// ==================== AI 助手 DTO ====================

// AIDescribeReq AI 生成商品文案请求
type AIDescribeReq struct {
	StoreID int64  `json:"store_id" binding:"required"`
	Prompt  string `json:"prompt" binding:"required,max=2000"`
	Locale  string `json:"locale"`
}

// AIDescribeResp AI 生成结果
type AIDescribeResp struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
