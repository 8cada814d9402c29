package model

// 平台角色常量
// admin 管理平台，seller 经营店铺，courier 负责配送，buyer 普通买家
const (
	RoleAdmin   = "admin"
	RoleSeller  = "seller"
	RoleCourier = "courier"
	RoleBuyer   = "buyer"
)

// User 平台用户
type User struct {
	BaseModel
	// 基础信息
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // 哈希密码
	Email    string `gorm:"size:100;index" json:"email"`
	Phone    string `gorm:"size:30" json:"phone"`

	// 平台级角色: admin / seller / courier / buyer
	Role string `gorm:"size:20;default:'buyer';index" json:"role"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// 卖家名下的店铺
	Stores []Store `gorm:"foreignKey:OwnerID" json:"stores,omitempty"`
}

func (User) TableName() string {
	return "users"
}
