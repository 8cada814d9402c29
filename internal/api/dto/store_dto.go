package dto

// ==================== 店铺 DTO ====================

// CreateStoreReq 开店请求
type CreateStoreReq struct {
	Name          string            `json:"name" binding:"required,max=100"`
	Subdomain     string            `json:"subdomain" binding:"omitempty,max=63"`
	NameTr        map[string]string `json:"name_tr"`
	DefaultLocale string            `json:"default_locale"`
	RevalidateUrl string            `json:"revalidate_url" binding:"omitempty,url"`
}

// UpdateStoreReq 店铺更新请求
type UpdateStoreReq struct {
	ID int64 `json:"-"`

	Name          *string                `json:"name,omitempty"`
	NameTr        map[string]string      `json:"name_tr,omitempty"`
	LogoUrl       *string                `json:"logo_url,omitempty"`
	DefaultLocale *string                `json:"default_locale,omitempty"`
	Theme         map[string]interface{} `json:"theme,omitempty"`
	RevalidateUrl *string                `json:"revalidate_url,omitempty"`
}

// StoreResp 店铺响应
type StoreResp struct {
	ID            int64  `json:"id"`
	OwnerID       int64  `json:"owner_id"`
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	LogoUrl       string `json:"logo_url"`
	DefaultLocale string `json:"default_locale"`
	ProductCount  int    `json:"product_count"`
	Status        int    `json:"status"`
}
