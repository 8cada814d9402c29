package model

import (
	"gorm.io/datatypes"
)

// Category 商品分类 (平台级，供店面分面筛选)
// ParentID = 0 为一级分类，否则为其子分类
type Category struct {
	BaseModel

	Name   string         `gorm:"size:100;not null" json:"name"`
	NameTr datatypes.JSON `gorm:"type:jsonb" json:"name_tr,omitempty"`
	Slug   string         `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	ParentID int64 `gorm:"index;default:0" json:"parent_id"`

	SortOrder int  `gorm:"default:0" json:"sort_order"`
	IsActive  bool `gorm:"default:true" json:"is_active"`

	// 统计计数，商品创建/删除时增减，夜间任务兜底重算
	ProductCount        int64 `gorm:"default:0" json:"product_count"`
	VariantProductCount int64 `gorm:"default:0;comment:含变体商品数" json:"variant_product_count"`
}

func (Category) TableName() string {
	return "categories"
}
