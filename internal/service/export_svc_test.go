package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

func setupExportTestSvc(t *testing.T) (*ExportService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return NewExportService(repository.NewProductRepository(db)), db
}

func TestExportStoreProducts(t *testing.T) {
	svc, db := setupExportTestSvc(t)

	price := int64(2599)
	products := []model.Product{
		{
			StoreID:     1,
			Name:        "Plain Mug",
			State:       model.ProductStateActive,
			PriceAmount: 1250,
			Stock:       8,
		},
		{
			StoreID:     1,
			Name:        "Tee",
			State:       model.ProductStateDraft,
			PriceAmount: 1999,
			HasVariants: true,
			Variants: model.VariantList{
				{
					ID:  "v1",
					SKU: "TEE-RED-S",
					Attributes: []model.VariantAttributeValue{
						{AttributeID: 1, AttributeName: "Color", ValueID: 1, Value: "Red"},
						{AttributeID: 2, AttributeName: "Size", ValueID: 1, Value: "S"},
					},
					Price:    &price,
					Stock:    3,
					IsActive: true,
				},
				{
					ID: "v2",
					Attributes: []model.VariantAttributeValue{
						{AttributeID: 1, AttributeName: "Color", ValueID: 2, Value: "Blue"},
						{AttributeID: 2, AttributeName: "Size", ValueID: 1, Value: "S"},
					},
					Stock:    2,
					IsActive: true,
				},
			},
		},
		{StoreID: 2, Name: "Other Store Item"}, // 不应出现在导出里
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	file, err := svc.ExportStoreProducts(context.Background(), 1)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	sheet := file.Sheets[0]
	// 表头 + 简单商品 1 行 + 变体商品 2 行
	if len(sheet.Rows) != 4 {
		t.Fatalf("期望 4 行，得到 %d", len(sheet.Rows))
	}

	simple := sheet.Rows[1]
	if simple.Cells[1].String() != "Plain Mug" {
		t.Errorf("简单商品名称 %q", simple.Cells[1].String())
	}
	if simple.Cells[3].String() != "" {
		t.Error("简单商品的 VariantID 列应为空")
	}

	variantRow := sheet.Rows[2]
	if variantRow.Cells[4].String() != "TEE-RED-S" {
		t.Errorf("SKU 列 %q", variantRow.Cells[4].String())
	}
	if variantRow.Cells[5].String() != "Color: Red / Size: S" {
		t.Errorf("属性列 %q", variantRow.Cells[5].String())
	}
	if v, _ := variantRow.Cells[6].Float(); v != 25.99 {
		t.Errorf("覆写价格 %v，期望 25.99", v)
	}

	// 未覆写价格回落到商品价
	fallbackRow := sheet.Rows[3]
	if v, _ := fallbackRow.Cells[6].Float(); v != 19.99 {
		t.Errorf("回落价格 %v，期望 19.99", v)
	}
}

func TestExportEmptyStore(t *testing.T) {
	svc, _ := setupExportTestSvc(t)

	file, err := svc.ExportStoreProducts(context.Background(), 42)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if len(file.Sheets[0].Rows) != 1 {
		t.Errorf("空店铺应只有表头行，得到 %d 行", len(file.Sheets[0].Rows))
	}
}
