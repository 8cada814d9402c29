package model

import (
	"gorm.io/datatypes"
)

// Store 状态常量
const (
	StoreStatusPending   = 0 // 待审核
	StoreStatusActive    = 1 // 正常
	StoreStatusSuspended = 2 // 已封禁
)

// Store 店铺 (多租户核心实体)
// 每个店铺通过独立子域名对外提供店面，Subdomain 全局唯一
type Store struct {
	BaseModel
	AuditMixin

	// 1. 核心身份
	OwnerID int64 `gorm:"index;not null"` // 店主 (users.id，角色须为 seller)
	Owner   *User `gorm:"foreignKey:OwnerID"`

	Name      string `gorm:"size:100;not null"`
	Subdomain string `gorm:"size:63;uniqueIndex;not null"` // 子域名标识，如 acme → acme.example.com
	LogoUrl   string `gorm:"size:512"`

	// 2. 本地化与主题
	// NameTr: {"en":"...","tr":"..."} 形式的多语言名称
	NameTr        datatypes.JSON `gorm:"type:jsonb"`
	DefaultLocale string         `gorm:"size:10;default:'en'"`
	Theme         datatypes.JSON `gorm:"type:jsonb;comment:店面主题配置"`

	// 3. 运营指标
	ProductCount int `gorm:"default:0"`

	// 4. 状态
	Status int `gorm:"default:0;index;comment:状态 0-待审核 1-正常 2-已封禁"`

	// 5. 店面缓存回调
	// 商品变更后通知店面刷新缓存的回调地址 (可为空)
	RevalidateUrl string `gorm:"size:512"`

	// 关联关系
	Products   []Product   `gorm:"foreignKey:StoreID"`
	Attributes []Attribute `gorm:"foreignKey:StoreID"`
}

func (Store) TableName() string {
	return "stores"
}
