package service

import (
	"github.com/google/uuid"

	"shopfarm_v1/internal/model"
)

// ==================== 变体生成引擎 ====================
//
// 纯函数实现：解析选择 → 笛卡尔积 → 与现有变体合并。
// 数据库交互由 ProductService 负责，这里不做任何 IO。

// ResolveSelections 将商品的属性选择解析为逐属性的值列表
//
// 每个选择项从目录中解析其属性定义，并把 values 过滤为选中的值 ID；
// 值顺序保持目录内顺序 (而非选中 ID 顺序)。
// 目录中缺失的属性、解析后为空的属性整项丢弃 (静默跳过，陈旧引用不阻塞生成)。
func ResolveSelections(selections model.SelectionList, catalog []model.Attribute) [][]model.VariantAttributeValue {
	byID := make(map[int64]*model.Attribute, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	resolved := make([][]model.VariantAttributeValue, 0, len(selections))
	for _, sel := range selections {
		attr, ok := byID[sel.AttributeID]
		if !ok {
			continue // 属性已从目录删除
		}

		selected := make(map[int64]bool, len(sel.ValueIDs))
		for _, id := range sel.ValueIDs {
			selected[id] = true
		}

		values := make([]model.VariantAttributeValue, 0, len(sel.ValueIDs))
		for _, v := range attr.Values {
			if !selected[v.ID] {
				continue
			}
			values = append(values, model.VariantAttributeValue{
				AttributeID:   attr.ID,
				AttributeName: attr.Name,
				ValueID:       v.ID,
				Value:         v.Value,
				ColorHex:      v.ColorHex,
			})
		}
		if len(values) == 0 {
			continue // 选中的值都已失效
		}
		resolved = append(resolved, values)
	}
	return resolved
}

// CartesianProduct 计算逐属性值列表的笛卡尔积
//
// 输出顺序：外层按属性出现顺序，内层按值列表顺序。
// 零个列表得到一个空组合，由调用方的前置校验保证实践中到不了这里。
func CartesianProduct(lists [][]model.VariantAttributeValue) [][]model.VariantAttributeValue {
	combos := [][]model.VariantAttributeValue{{}}
	for _, values := range lists {
		next := make([][]model.VariantAttributeValue, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, v := range values {
				merged := make([]model.VariantAttributeValue, len(combo), len(combo)+1)
				copy(merged, combo)
				next = append(next, append(merged, v))
			}
		}
		combos = next
	}
	return combos
}

// GenerateVariants 生成完整去重的变体列表，保留已有组合的用户数据
//
// 已存在相同逻辑身份 (属性对集合) 的组合整条复用现有记录
// (价格/库存/SKU/图片/启用状态/ID 原样保留)，仅刷新属性元数据；
// 新组合以 stock=0、images 空、is_active=true 初始化。
func GenerateVariants(selections model.SelectionList, catalog []model.Attribute, existing model.VariantList) (model.VariantList, error) {
	resolved := ResolveSelections(selections, catalog)
	if len(resolved) == 0 {
		return nil, ErrNoValidAttributes
	}

	byKey := make(map[string]*model.ProductVariant, len(existing))
	for i := range existing {
		byKey[existing[i].IdentityKey()] = &existing[i]
	}

	combos := CartesianProduct(resolved)
	variants := make(model.VariantList, 0, len(combos))
	for _, combo := range combos {
		key := model.AttributeSetKey(combo)
		if prev, ok := byKey[key]; ok {
			kept := *prev
			kept.Attributes = combo // 目录可能改过名，刷新冗余元数据
			variants = append(variants, kept)
			continue
		}
		variants = append(variants, model.ProductVariant{
			Attributes: combo,
			Stock:      0,
			Images:     []string{},
			IsActive:   true,
		})
	}
	return variants, nil
}

// DedupeVariants 按逻辑身份去重，保留首个出现的变体
// 批量整表替换的输入不经过笛卡尔积，需要显式去重
func DedupeVariants(variants model.VariantList) model.VariantList {
	seen := make(map[string]bool, len(variants))
	out := make(model.VariantList, 0, len(variants))
	for _, v := range variants {
		key := v.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// AssignVariantIDs 为无 ID 的变体分配 uuid (持久化前调用)
// 已有 ID 不变，保证重复生成的幂等性
func AssignVariantIDs(variants model.VariantList) {
	for i := range variants {
		if variants[i].ID == "" {
			variants[i].ID = uuid.NewString()
		}
	}
}
