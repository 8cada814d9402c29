package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
)

// 属性值类型常量
const (
	AttributeTypeText  = "text"  // 纯文本值，如 Size: S/M/L
	AttributeTypeColor = "color" // 色板值，附带 color_hex
)

// AttributeValue 属性下的一个可选值
// ID 在属性内唯一，由 next_value_id 计数器分配，删除后不复用
type AttributeValue struct {
	ID        int64             `json:"id"`
	Value     string            `json:"value"`
	ValueTr   map[string]string `json:"value_tr,omitempty"`
	ColorHex  string            `json:"color_hex,omitempty"` // 仅 type=color 时有意义
	SortOrder int               `json:"sort_order"`
}

// AttributeValueList jsonb 嵌入的值列表，保持录入顺序
type AttributeValueList []AttributeValue

func (l AttributeValueList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *AttributeValueList) Scan(src interface{}) error {
	if src == nil {
		*l = AttributeValueList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("attribute values: 不支持的扫描类型")
	}
}

// Attribute 店铺级属性定义 (商品变体的选项维度，如 Color、Size)
type Attribute struct {
	BaseModel
	AuditMixin

	StoreID int64  `gorm:"index:idx_attr_store_slug,unique;not null"`
	Store   *Store `gorm:"foreignKey:StoreID"`

	Name   string         `gorm:"size:100;not null"`
	NameTr datatypes.JSON `gorm:"type:jsonb"`
	// slug 店铺内唯一
	Slug string `gorm:"size:100;index:idx_attr_store_slug,unique;not null"`

	Type string `gorm:"size:20;default:'text'"` // text | color

	// 该属性的值是否需要独立图集 (如 Color 需要、Size 不需要)
	RequiresImage bool `gorm:"default:false"`

	// 有序值列表 (jsonb 嵌入)
	Values AttributeValueList `gorm:"type:jsonb"`

	// 值 ID 分配计数器
	NextValueID int64 `gorm:"default:1"`

	SortOrder int `gorm:"default:0"`
}

func (Attribute) TableName() string {
	return "attributes"
}

// ValueByID 按值 ID 查找，找不到返回 nil
func (a *Attribute) ValueByID(id int64) *AttributeValue {
	for i := range a.Values {
		if a.Values[i].ID == id {
			return &a.Values[i]
		}
	}
	return nil
}
