package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Product 状态常量
const (
	ProductStateDraft    = "draft"
	ProductStateActive   = "active"
	ProductStateInactive = "inactive"
)

// ==================== 变体嵌入结构 ====================

// VariantAttributeValue 变体上冗余存储的属性取值
// 名称/值文本在生成时从属性目录解析写入，目录改名后在下次生成时刷新
type VariantAttributeValue struct {
	AttributeID   int64  `json:"attribute_id"`
	AttributeName string `json:"attribute_name"`
	ValueID       int64  `json:"value_id"`
	Value         string `json:"value"`
	ColorHex      string `json:"color_hex,omitempty"`
}

// ProductVariant 商品变体 (嵌入 products.variants jsonb，不单独建表)
// ID 首次持久化时分配 uuid；Price/SalePrice 为空时回落到商品价格 (约定，不落库)
type ProductVariant struct {
	ID         string                  `json:"id,omitempty"`
	SKU        string                  `json:"sku,omitempty"`
	Attributes []VariantAttributeValue `json:"attributes"`
	Price      *int64                  `json:"price,omitempty"`      // 分
	SalePrice  *int64                  `json:"sale_price,omitempty"` // 分
	Stock      int                     `json:"stock"`
	Images     []string                `json:"images"`
	IsActive   bool                    `json:"is_active"`
}

// IdentityKey 变体的逻辑身份：属性 (attribute_id, value_id) 对的有序拼接
// 生成合并与图片分组都用它做匹配，与 attributes 列表顺序无关
func (v *ProductVariant) IdentityKey() string {
	return AttributeSetKey(v.Attributes)
}

// AttributeSetKey 对属性对排序后拼接成确定性组合键
func AttributeSetKey(attrs []VariantAttributeValue) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, strconv.FormatInt(a.AttributeID, 10)+":"+strconv.FormatInt(a.ValueID, 10))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// VariantList jsonb 嵌入的变体列表
type VariantList []ProductVariant

func (l VariantList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *VariantList) Scan(src interface{}) error {
	if src == nil {
		*l = VariantList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("variants: 不支持的扫描类型")
	}
}

// TotalStock 变体库存合计
func (l VariantList) TotalStock() int {
	total := 0
	for _, v := range l {
		total += v.Stock
	}
	return total
}

// ==================== 属性选择嵌入结构 ====================

// AttributeSelection 商品选择的属性及其值子集 (变体生成的输入空间)
type AttributeSelection struct {
	AttributeID int64   `json:"attribute_id"`
	ValueIDs    []int64 `json:"value_ids"`
}

// SelectionList jsonb 嵌入的属性选择列表，顺序决定笛卡尔积的枚举顺序
type SelectionList []AttributeSelection

func (l SelectionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *SelectionList) Scan(src interface{}) error {
	if src == nil {
		*l = SelectionList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("product attributes: 不支持的扫描类型")
	}
}

// AttributeIDs 选择涉及的属性 ID 列表 (保序)
func (l SelectionList) AttributeIDs() []int64 {
	ids := make([]int64, 0, len(l))
	for _, s := range l {
		ids = append(ids, s.AttributeID)
	}
	return ids
}

// ==================== 商品主体 ====================

// Product 商品
// 变体与属性选择以 jsonb 嵌入，整行读-改-写，后写覆盖 (单卖家编辑场景下可接受)
type Product struct {
	BaseModel
	AuditMixin

	// --- 归属 ---
	StoreID int64  `gorm:"index:idx_product_store_state;not null"`
	Store   *Store `gorm:"foreignKey:StoreID"`

	CategoryID    int64     `gorm:"index;default:0"`
	Category      *Category `gorm:"foreignKey:CategoryID"`
	SubCategoryID int64     `gorm:"index;default:0"`

	// --- 基本信息 ---
	Name          string         `gorm:"size:255;not null"`
	NameTr        datatypes.JSON `gorm:"type:jsonb"`
	Slug          string         `gorm:"size:255;index"`
	Description   string         `gorm:"type:text"`
	DescriptionTr datatypes.JSON `gorm:"type:jsonb"`

	// --- 价格 (分) ---
	PriceAmount     int64  `gorm:"default:0"`
	SalePriceAmount int64  `gorm:"default:0"`
	IsOnSale        bool   `gorm:"default:false"`
	CurrencyCode    string `gorm:"size:5;default:'USD'"`

	// --- 库存 ---
	// HasVariants=false 时 Stock 权威；为 true 时 TotalStock = 各变体 stock 之和
	Stock       int  `gorm:"default:0"`
	HasVariants bool `gorm:"default:false"`
	TotalStock  int  `gorm:"default:0"`

	// --- 变体数据 (jsonb 嵌入) ---
	ProductAttributes SelectionList `gorm:"type:jsonb"`
	Variants          VariantList   `gorm:"type:jsonb"`

	// --- 图片与标签 ---
	Images pq.StringArray `gorm:"type:text[]"`
	Tags   pq.StringArray `gorm:"type:text[]"`

	// --- 状态与计数 ---
	State      string `gorm:"size:20;default:'draft';index:idx_product_store_state"`
	ViewCount  int64  `gorm:"default:0"`
	OrderCount int64  `gorm:"default:0"`
}

func (Product) TableName() string {
	return "products"
}

// EffectiveStock 对外展示的库存
func (p *Product) EffectiveStock() int {
	if p.HasVariants {
		return p.TotalStock
	}
	return p.Stock
}

// FindVariant 按变体 ID 查找，返回下标，找不到返回 -1
func (p *Product) FindVariant(variantID string) int {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return i
		}
	}
	return -1
}
