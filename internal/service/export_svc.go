package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"

	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

// ExportService 商品导出服务
// 按店铺导出商品明细：有变体的商品一行一个变体，无变体商品一行
type ExportService struct {
	productRepo repository.ProductRepository
}

func NewExportService(productRepo repository.ProductRepository) *ExportService {
	return &ExportService{productRepo: productRepo}
}

// ExportStoreProducts 导出店铺全部商品为 xlsx
func (s *ExportService) ExportStoreProducts(ctx context.Context, storeID int64) (*xlsx.File, error) {
	products, err := s.productRepo.ListAllByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ProductID", "Name", "State", "VariantID", "SKU", "VariantAttributes",
		"Price", "SalePrice", "Stock", "Active", "CreatedAt", "UpdatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		if !p.HasVariants || len(p.Variants) == 0 {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.State)
			row.AddCell().SetValue("")
			row.AddCell().SetValue("")
			row.AddCell().SetValue("")
			row.AddCell().SetValue(centsToPrice(p.PriceAmount))
			row.AddCell().SetValue(productSaleCell(p))
			row.AddCell().SetValue(p.Stock)
			row.AddCell().SetValue(p.State == model.ProductStateActive)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
			continue
		}

		for _, v := range p.Variants {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.State)
			row.AddCell().SetValue(v.ID)
			row.AddCell().SetValue(v.SKU)
			row.AddCell().SetValue(variantAttrsCell(v.Attributes))
			row.AddCell().SetValue(variantPriceCell(v.Price, p.PriceAmount))
			row.AddCell().SetValue(optionalPriceCell(v.SalePrice))
			row.AddCell().SetValue(v.Stock)
			row.AddCell().SetValue(v.IsActive)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return file, nil
}

// variantAttrsCell 变体属性展示，如 "Color: Red / Size: M"
func variantAttrsCell(attrs []model.VariantAttributeValue) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, fmt.Sprintf("%s: %s", a.AttributeName, a.Value))
	}
	return strings.Join(parts, " / ")
}

// variantPriceCell 变体价格，未覆写时回落到商品价
func variantPriceCell(override *int64, base int64) float64 {
	if override != nil {
		return centsToPrice(*override)
	}
	return centsToPrice(base)
}

func optionalPriceCell(p *int64) interface{} {
	if p == nil {
		return ""
	}
	return centsToPrice(*p)
}

func productSaleCell(p model.Product) interface{} {
	if !p.IsOnSale {
		return ""
	}
	return centsToPrice(p.SalePriceAmount)
}
