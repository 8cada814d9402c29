package service

import (
	"strings"

	"shopfarm_v1/internal/model"
)

// ==================== 图片分组投影 ====================

// ImageGroup 变体按"需图属性"投影后的分组 (派生数据，不持久化)
//
// 例如 Color 需要独立图集而 Size 不需要时，Red/S、Red/M、Red/L
// 归入同一个 "Red" 分组，卖家只需为 Red 上传一套图。
type ImageGroup struct {
	Key        string                        `json:"key"`   // 排序后的 attrID:valueID 组合键
	Label      string                        `json:"label"` // 展示名，如 "Red" 或 "Red / Cotton"
	Attributes []model.VariantAttributeValue `json:"attributes"`
	Images     []string                      `json:"images"`
	TotalStock int                           `json:"total_stock"`
	// 软性提醒：有库存但没有图片的分组需要卖家关注；
	// 零库存零图片视为有意未启用，不提醒
	NeedsImages bool `json:"needs_images"`
}

// BuildImageGroups 把商品变体按需图属性分组
//
// 需图属性集合来自目录中 requires_image=true 且被该商品选中的属性。
// 没有需图属性时返回空列表，界面回落到商品级图片。
// 每个分组的图片取首个归入变体的图集，后续变体只累加库存。
func BuildImageGroups(product *model.Product, catalog []model.Attribute) []ImageGroup {
	imageAttrIDs := make(map[int64]bool)
	selectedIDs := make(map[int64]bool, len(product.ProductAttributes))
	for _, sel := range product.ProductAttributes {
		selectedIDs[sel.AttributeID] = true
	}
	for _, attr := range catalog {
		if attr.RequiresImage && selectedIDs[attr.ID] {
			imageAttrIDs[attr.ID] = true
		}
	}
	if len(imageAttrIDs) == 0 {
		return []ImageGroup{}
	}

	groups := make([]ImageGroup, 0)
	index := make(map[string]int) // key → groups 下标

	for _, variant := range product.Variants {
		projected := make([]model.VariantAttributeValue, 0, len(variant.Attributes))
		for _, a := range variant.Attributes {
			if imageAttrIDs[a.AttributeID] {
				projected = append(projected, a)
			}
		}
		if len(projected) == 0 {
			continue
		}
		key := model.AttributeSetKey(projected)

		if i, ok := index[key]; ok {
			groups[i].TotalStock += variant.Stock
			continue
		}

		labels := make([]string, 0, len(projected))
		for _, a := range projected {
			labels = append(labels, a.Value)
		}
		images := variant.Images
		if images == nil {
			images = []string{}
		}
		index[key] = len(groups)
		groups = append(groups, ImageGroup{
			Key:        key,
			Label:      strings.Join(labels, " / "),
			Attributes: projected,
			Images:     images,
			TotalStock: variant.Stock,
		})
	}

	for i := range groups {
		groups[i].NeedsImages = groups[i].TotalStock > 0 && len(groups[i].Images) == 0
	}
	return groups
}
