package service

import (
	"errors"
	"testing"

	"shopfarm_v1/internal/model"
)

// ==================== 测试数据 ====================

// 目录：Color (Red/Blue, 需图)、Size (S/M)
func makeTestCatalog() []model.Attribute {
	return []model.Attribute{
		{
			BaseModel:     model.BaseModel{ID: 1},
			StoreID:       1,
			Name:          "Color",
			Slug:          "color",
			Type:          model.AttributeTypeColor,
			RequiresImage: true,
			Values: model.AttributeValueList{
				{ID: 1, Value: "Red", ColorHex: "#FF0000"},
				{ID: 2, Value: "Blue", ColorHex: "#0000FF"},
			},
			NextValueID: 3,
		},
		{
			BaseModel: model.BaseModel{ID: 2},
			StoreID:   1,
			Name:      "Size",
			Slug:      "size",
			Type:      model.AttributeTypeText,
			Values: model.AttributeValueList{
				{ID: 1, Value: "S"},
				{ID: 2, Value: "M"},
			},
			NextValueID: 3,
		},
	}
}

func makeTestSelections() model.SelectionList {
	return model.SelectionList{
		{AttributeID: 1, ValueIDs: []int64{1, 2}},
		{AttributeID: 2, ValueIDs: []int64{1, 2}},
	}
}

func variantByKey(t *testing.T, variants model.VariantList, key string) *model.ProductVariant {
	t.Helper()
	for i := range variants {
		if variants[i].IdentityKey() == key {
			return &variants[i]
		}
	}
	t.Fatalf("未找到组合 %s", key)
	return nil
}

// ==================== 笛卡尔积 ====================

func TestCartesianProductCompleteness(t *testing.T) {
	resolved := ResolveSelections(makeTestSelections(), makeTestCatalog())
	combos := CartesianProduct(resolved)

	if len(combos) != 4 {
		t.Fatalf("期望 4 个组合，得到 %d", len(combos))
	}

	// 枚举顺序：外层属性序 × 内层值序
	wantOrder := [][2]string{
		{"Red", "S"}, {"Red", "M"},
		{"Blue", "S"}, {"Blue", "M"},
	}
	for i, combo := range combos {
		if len(combo) != 2 {
			t.Fatalf("组合 %d 长度 %d，期望 2", i, len(combo))
		}
		if combo[0].Value != wantOrder[i][0] || combo[1].Value != wantOrder[i][1] {
			t.Errorf("组合 %d 为 %s/%s，期望 %s/%s",
				i, combo[0].Value, combo[1].Value, wantOrder[i][0], wantOrder[i][1])
		}
	}

	// 组合键两两不同
	seen := make(map[string]bool)
	for _, combo := range combos {
		key := model.AttributeSetKey(combo)
		if seen[key] {
			t.Errorf("组合键重复: %s", key)
		}
		seen[key] = true
	}
}

func TestResolveSelectionsKeepsCatalogOrder(t *testing.T) {
	// 选中顺序故意倒置，解析结果应保持目录内顺序
	selections := model.SelectionList{
		{AttributeID: 2, ValueIDs: []int64{2, 1}},
	}
	resolved := ResolveSelections(selections, makeTestCatalog())

	if len(resolved) != 1 || len(resolved[0]) != 2 {
		t.Fatalf("解析结果形状异常: %v", resolved)
	}
	if resolved[0][0].Value != "S" || resolved[0][1].Value != "M" {
		t.Errorf("值顺序 %s/%s，期望目录序 S/M", resolved[0][0].Value, resolved[0][1].Value)
	}
}

func TestResolveSelectionsSkipsStaleReferences(t *testing.T) {
	selections := model.SelectionList{
		{AttributeID: 1, ValueIDs: []int64{1, 99}}, // 值 99 已删除
		{AttributeID: 7, ValueIDs: []int64{1}},     // 属性 7 已删除
		{AttributeID: 2, ValueIDs: []int64{98}},    // 全部值失效
	}
	resolved := ResolveSelections(selections, makeTestCatalog())

	if len(resolved) != 1 {
		t.Fatalf("期望仅 1 个属性存活，得到 %d", len(resolved))
	}
	if len(resolved[0]) != 1 || resolved[0][0].Value != "Red" {
		t.Errorf("存活值异常: %v", resolved[0])
	}
}

// ==================== 生成与合并 ====================

func TestGenerateVariantsInitializesNew(t *testing.T) {
	variants, err := GenerateVariants(makeTestSelections(), makeTestCatalog(), nil)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(variants) != 4 {
		t.Fatalf("期望 4 个变体，得到 %d", len(variants))
	}

	for _, v := range variants {
		if v.ID != "" {
			t.Errorf("生成阶段不应分配 ID，得到 %q", v.ID)
		}
		if v.Stock != 0 {
			t.Errorf("新变体库存应为 0，得到 %d", v.Stock)
		}
		if v.Images == nil || len(v.Images) != 0 {
			t.Errorf("新变体图片应为空列表，得到 %v", v.Images)
		}
		if !v.IsActive {
			t.Error("新变体应默认启用")
		}
		if v.Price != nil {
			t.Error("新变体不应有价格覆写")
		}
	}
}

func TestGenerateVariantsPreservesExisting(t *testing.T) {
	price := int64(1999)
	existing := model.VariantList{
		{
			ID:  "keep-me",
			SKU: "RED-S",
			Attributes: []model.VariantAttributeValue{
				{AttributeID: 1, AttributeName: "Color", ValueID: 1, Value: "Red"},
				{AttributeID: 2, AttributeName: "Size", ValueID: 1, Value: "S"},
			},
			Price:    &price,
			Stock:    7,
			Images:   []string{"https://cdn.example.com/red.jpg"},
			IsActive: false,
		},
	}

	variants, err := GenerateVariants(makeTestSelections(), makeTestCatalog(), existing)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(variants) != 4 {
		t.Fatalf("期望 4 个变体，得到 %d", len(variants))
	}

	kept := variantByKey(t, variants, existing[0].IdentityKey())
	if kept.ID != "keep-me" || kept.SKU != "RED-S" {
		t.Errorf("身份字段未保留: id=%q sku=%q", kept.ID, kept.SKU)
	}
	if kept.Stock != 7 || kept.Price == nil || *kept.Price != 1999 {
		t.Errorf("库存/价格未保留: stock=%d price=%v", kept.Stock, kept.Price)
	}
	if len(kept.Images) != 1 || kept.Images[0] != "https://cdn.example.com/red.jpg" {
		t.Errorf("图片未保留: %v", kept.Images)
	}
	if kept.IsActive {
		t.Error("启用状态未保留")
	}

	// 其余 3 个为新组合
	fresh := 0
	for _, v := range variants {
		if v.ID == "" {
			fresh++
		}
	}
	if fresh != 3 {
		t.Errorf("期望 3 个新变体，得到 %d", fresh)
	}
}

func TestGenerateVariantsIdempotent(t *testing.T) {
	first, err := GenerateVariants(makeTestSelections(), makeTestCatalog(), nil)
	if err != nil {
		t.Fatalf("首次生成失败: %v", err)
	}
	AssignVariantIDs(first)

	second, err := GenerateVariants(makeTestSelections(), makeTestCatalog(), first)
	if err != nil {
		t.Fatalf("二次生成失败: %v", err)
	}
	AssignVariantIDs(second)

	if len(first) != len(second) {
		t.Fatalf("数量漂移: %d → %d", len(first), len(second))
	}
	for i := range first {
		kept := variantByKey(t, second, first[i].IdentityKey())
		if kept.ID != first[i].ID {
			t.Errorf("组合 %s 的 ID 变了: %q → %q", first[i].IdentityKey(), first[i].ID, kept.ID)
		}
	}
}

func TestGenerateVariantsRefreshesAttributeMetadata(t *testing.T) {
	existing, err := GenerateVariants(makeTestSelections(), makeTestCatalog(), nil)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	AssignVariantIDs(existing)

	// 目录改名 Red → Crimson
	catalog := makeTestCatalog()
	catalog[0].Values[0].Value = "Crimson"

	regenerated, err := GenerateVariants(makeTestSelections(), catalog, existing)
	if err != nil {
		t.Fatalf("重生成失败: %v", err)
	}

	renamed := 0
	for _, v := range regenerated {
		for _, a := range v.Attributes {
			if a.AttributeID == 1 && a.ValueID == 1 {
				if a.Value != "Crimson" {
					t.Errorf("冗余值未刷新: %q", a.Value)
				}
				renamed++
			}
		}
	}
	if renamed != 2 { // Crimson/S、Crimson/M
		t.Errorf("期望 2 个变体引用改名值，得到 %d", renamed)
	}
}

func TestGenerateVariantsNoValidAttributes(t *testing.T) {
	selections := model.SelectionList{
		{AttributeID: 99, ValueIDs: []int64{1}},
	}
	_, err := GenerateVariants(selections, makeTestCatalog(), nil)
	if !errors.Is(err, ErrNoValidAttributes) {
		t.Fatalf("期望 ErrNoValidAttributes，得到 %v", err)
	}
}

func TestGenerateVariantsSingleAttribute(t *testing.T) {
	selections := model.SelectionList{
		{AttributeID: 2, ValueIDs: []int64{1, 2}},
	}
	variants, err := GenerateVariants(selections, makeTestCatalog(), nil)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("期望 2 个变体，得到 %d", len(variants))
	}
}

// ==================== 去重与 ID 分配 ====================

func TestDedupeVariantsFirstWins(t *testing.T) {
	attrs := []model.VariantAttributeValue{
		{AttributeID: 1, ValueID: 1, Value: "Red"},
	}
	variants := model.VariantList{
		{ID: "a", Attributes: attrs, Stock: 5},
		{ID: "b", Attributes: attrs, Stock: 9}, // 相同身份，应被丢弃
		{ID: "c", Attributes: []model.VariantAttributeValue{{AttributeID: 1, ValueID: 2, Value: "Blue"}}},
	}

	out := DedupeVariants(variants)
	if len(out) != 2 {
		t.Fatalf("期望 2 个变体，得到 %d", len(out))
	}
	if out[0].ID != "a" || out[0].Stock != 5 {
		t.Errorf("应保留首个出现的变体，得到 %+v", out[0])
	}
	if out[1].ID != "c" {
		t.Errorf("第二个变体异常: %+v", out[1])
	}
}

func TestAssignVariantIDs(t *testing.T) {
	variants := model.VariantList{
		{ID: "existing"},
		{},
		{},
	}
	AssignVariantIDs(variants)

	if variants[0].ID != "existing" {
		t.Errorf("已有 ID 不应改动: %q", variants[0].ID)
	}
	if variants[1].ID == "" || variants[2].ID == "" {
		t.Error("空 ID 应被分配")
	}
	if variants[1].ID == variants[2].ID {
		t.Error("分配的 ID 应互不相同")
	}
}

func TestAttributeSetKeyOrderIndependent(t *testing.T) {
	a := []model.VariantAttributeValue{
		{AttributeID: 1, ValueID: 2},
		{AttributeID: 2, ValueID: 1},
	}
	b := []model.VariantAttributeValue{
		{AttributeID: 2, ValueID: 1},
		{AttributeID: 1, ValueID: 2},
	}
	if model.AttributeSetKey(a) != model.AttributeSetKey(b) {
		t.Error("组合键应与属性顺序无关")
	}
}
