package dto

// ==================== 属性目录 DTO ====================

// AttributeValueInput 属性值录入
// ID>0 表示编辑现有值，为 0 表示新增 (服务层分配 ID)
type AttributeValueInput struct {
	ID        int64             `json:"id"`
	Value     string            `json:"value" binding:"required,max=100"`
	ValueTr   map[string]string `json:"value_tr"`
	ColorHex  string            `json:"color_hex"`
	SortOrder int               `json:"sort_order"`
}

// CreateAttributeReq 创建属性请求
type CreateAttributeReq struct {
	StoreID       int64                 `json:"store_id" binding:"required"`
	Name          string                `json:"name" binding:"required,max=100"`
	NameTr        map[string]string     `json:"name_tr"`
	Type          string                `json:"type" binding:"omitempty,oneof=text color"`
	RequiresImage bool                  `json:"requires_image"`
	Values        []AttributeValueInput `json:"values" binding:"required,min=1"`
	SortOrder     int                   `json:"sort_order"`
}

// UpdateAttributeReq 更新属性请求
type UpdateAttributeReq struct {
	ID      int64 `json:"-"`
	StoreID int64 `json:"store_id" binding:"required"`

	Name          *string           `json:"name,omitempty"`
	NameTr        map[string]string `json:"name_tr,omitempty"`
	RequiresImage *bool             `json:"requires_image,omitempty"`
	SortOrder     *int              `json:"sort_order,omitempty"`
	// 值列表整体提交：保留的带原 ID，新增的 ID=0，缺席的视为删除
	Values []AttributeValueInput `json:"values,omitempty"`
}
