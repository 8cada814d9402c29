package service

import (
	"context"
	"log"
	"math"

	"github.com/gosimple/slug"
	"github.com/lib/pq"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品与变体的全部业务入口
// 所有变体变更走"整行读-改-写"：内存中算完一次性落库，失败即整单失败
type ProductService struct {
	productRepo   repository.ProductRepository
	attributeRepo repository.AttributeRepository
	categoryRepo  repository.CategoryRepository
	storeRepo     repository.StoreRepository
	webhook       *WebhookService
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	attributeRepo repository.AttributeRepository,
	categoryRepo repository.CategoryRepository,
	storeRepo repository.StoreRepository,
	webhook *WebhookService,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		attributeRepo: attributeRepo,
		categoryRepo:  categoryRepo,
		storeRepo:     storeRepo,
		webhook:       webhook,
	}
}

// ==================== 查询 ====================

// GetProduct 获取商品 (公开)
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// GetProductForStore 归属校验获取
func (s *ProductService) GetProductForStore(ctx context.Context, id, storeID int64) (*model.Product, error) {
	return s.productRepo.GetByIDForStore(ctx, id, storeID)
}

// ListProducts 商品列表
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}

// ==================== 商品 CRUD ====================

// CreateProduct 创建商品
// imageURLs 为控制器侧已上传完成的图片地址
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductReq, imageURLs []string) (*model.Product, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	product := &model.Product{
		StoreID:           req.StoreID,
		CategoryID:        req.CategoryID,
		SubCategoryID:     req.SubCategoryID,
		Name:              req.Name,
		Slug:              slug.Make(req.Name),
		Description:       req.Description,
		PriceAmount:       priceToCents(req.Price),
		SalePriceAmount:   priceToCents(req.SalePrice),
		IsOnSale:          req.IsOnSale,
		CurrencyCode:      currency,
		Stock:             req.Stock,
		Images:            pq.StringArray(imageURLs),
		Tags:              pq.StringArray(req.Tags),
		State:             model.ProductStateDraft,
		ProductAttributes: selectionsFromInput(req.ProductAttributes),
		Variants:          model.VariantList{},
	}

	if len(req.Variants) > 0 {
		variants := DedupeVariants(variantsFromInput(req.Variants))
		AssignVariantIDs(variants)
		product.Variants = variants
		product.HasVariants = true
		product.TotalStock = variants.TotalStock()
	} else {
		product.TotalStock = product.Stock
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.adjustCategoryStats(ctx, product.CategoryID, 1, boolToDelta(product.HasVariants))
	s.notifyStorefront(product.StoreID, product.ID)
	return product, nil
}

// UpdateProduct 更新商品 (部分字段)
// has_variants 显式置 false 时清空变体并回到简单库存 (单向数据丢弃)
func (s *ProductService) UpdateProduct(ctx context.Context, req *dto.UpdateProductReq) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, req.ID, req.StoreID)
	if err != nil {
		return nil, err
	}

	wasVariant := product.HasVariants
	oldCategory := product.CategoryID

	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.PriceAmount = priceToCents(*req.Price)
	}
	if req.SalePrice != nil {
		product.SalePriceAmount = priceToCents(*req.SalePrice)
	}
	if req.IsOnSale != nil {
		product.IsOnSale = *req.IsOnSale
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.SubCategoryID != nil {
		product.SubCategoryID = *req.SubCategoryID
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.State != nil {
		product.State = *req.State
	}
	if req.HasProductAttributes {
		product.ProductAttributes = selectionsFromInput(req.ProductAttributes)
	}
	if req.HasVariantsPayload {
		variants := DedupeVariants(variantsFromInput(req.Variants))
		AssignVariantIDs(variants)
		product.Variants = variants
		product.HasVariants = len(variants) > 0
	}

	// 显式切回简单模式：变体数据不保留
	if req.HasVariants != nil && !*req.HasVariants {
		product.Variants = model.VariantList{}
		product.HasVariants = false
	}

	s.recomputeStock(product)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	// 分类或变体标记变化时修正统计
	if oldCategory != product.CategoryID {
		s.adjustCategoryStats(ctx, oldCategory, -1, boolToDelta(wasVariant)*-1)
		s.adjustCategoryStats(ctx, product.CategoryID, 1, boolToDelta(product.HasVariants))
	} else if wasVariant != product.HasVariants {
		s.adjustCategoryStats(ctx, product.CategoryID, 0, boolToDelta(product.HasVariants)-boolToDelta(wasVariant))
	}

	s.notifyStorefront(product.StoreID, product.ID)
	return product, nil
}

// DeleteProduct 删除商品 (软删)，同步回收分类统计
func (s *ProductService) DeleteProduct(ctx context.Context, id, storeID int64) error {
	product, err := s.productRepo.GetByIDForStore(ctx, id, storeID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.adjustCategoryStats(ctx, product.CategoryID, -1, boolToDelta(product.HasVariants)*-1)
	s.notifyStorefront(storeID, id)
	return nil
}

// AddProductImages 追加商品图片
func (s *ProductService) AddProductImages(ctx context.Context, productID, storeID int64, urls []string) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}

	product.Images = append(product.Images, urls...)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.notifyStorefront(product.StoreID, product.ID)
	return product, nil
}

// ==================== 变体操作 ====================

// GenerateProductVariants 按当前属性选择生成/重生成变体
// 已有组合的价格/库存/SKU/图片整条保留，缺失组合补零初始化
func (s *ProductService) GenerateProductVariants(ctx context.Context, productID, storeID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	if len(product.ProductAttributes) == 0 {
		return nil, ErrNoAttributesConfigured
	}

	catalog, err := s.attributeRepo.ListByIDs(ctx, storeID, product.ProductAttributes.AttributeIDs())
	if err != nil {
		return nil, err
	}

	variants, err := GenerateVariants(product.ProductAttributes, catalog, product.Variants)
	if err != nil {
		return nil, err
	}
	AssignVariantIDs(variants)

	wasVariant := product.HasVariants
	product.Variants = variants
	product.HasVariants = true
	product.TotalStock = variants.TotalStock()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if !wasVariant {
		s.adjustCategoryStats(ctx, product.CategoryID, 0, 1)
	}
	s.notifyStorefront(storeID, productID)
	return product, nil
}

// BulkUpdateVariants 批量变体：regenerate 走生成器，否则整表替换
func (s *ProductService) BulkUpdateVariants(ctx context.Context, productID, storeID int64, req *dto.BulkVariantsReq) (*model.Product, error) {
	if req.Regenerate {
		return s.GenerateProductVariants(ctx, productID, storeID)
	}
	if req.Variants == nil {
		return nil, ErrBulkInputMissing
	}

	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}

	wasVariant := product.HasVariants
	variants := DedupeVariants(variantsFromInput(req.Variants))
	AssignVariantIDs(variants)

	product.Variants = variants
	product.HasVariants = len(variants) > 0
	s.recomputeStock(product)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if wasVariant != product.HasVariants {
		s.adjustCategoryStats(ctx, product.CategoryID, 0, boolToDelta(product.HasVariants)-boolToDelta(wasVariant))
	}
	s.notifyStorefront(storeID, productID)
	return product, nil
}

// UpdateVariant 单变体部分更新
func (s *ProductService) UpdateVariant(ctx context.Context, productID int64, variantID string, storeID int64, req *dto.UpdateVariantReq) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}

	idx := product.FindVariant(variantID)
	if idx < 0 {
		return nil, ErrVariantNotFound
	}

	v := &product.Variants[idx]
	if req.SKU != nil {
		v.SKU = *req.SKU
	}
	if req.Price != nil {
		amount := priceToCents(*req.Price)
		v.Price = &amount
	}
	if req.SalePrice != nil {
		amount := priceToCents(*req.SalePrice)
		v.SalePrice = &amount
	}
	if req.Stock != nil {
		v.Stock = *req.Stock
	}
	if req.Images != nil {
		v.Images = *req.Images
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	product.TotalStock = product.Variants.TotalStock()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.notifyStorefront(storeID, productID)
	return product, nil
}

// DeleteVariant 删除单变体；删光后强制回到简单模式
func (s *ProductService) DeleteVariant(ctx context.Context, productID int64, variantID string, storeID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}

	idx := product.FindVariant(variantID)
	if idx < 0 {
		return nil, ErrVariantNotFound
	}

	product.Variants = append(product.Variants[:idx], product.Variants[idx+1:]...)
	if len(product.Variants) == 0 {
		product.HasVariants = false
	}
	s.recomputeStock(product)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if !product.HasVariants {
		s.adjustCategoryStats(ctx, product.CategoryID, 0, -1)
	}
	s.notifyStorefront(storeID, productID)
	return product, nil
}

// GetImageGroups 变体的图片分组投影 (仪表盘上传界面用)
func (s *ProductService) GetImageGroups(ctx context.Context, productID, storeID int64) ([]ImageGroup, error) {
	product, err := s.productRepo.GetByIDForStore(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.attributeRepo.ListByIDs(ctx, storeID, product.ProductAttributes.AttributeIDs())
	if err != nil {
		return nil, err
	}
	return BuildImageGroups(product, catalog), nil
}

// ==================== 店面侧 ====================

// ViewProduct 店面商品详情 (计浏览数，计数失败不阻塞)
func (s *ProductService) ViewProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.IncrViewCount(ctx, id); err != nil {
		log.Printf("[ProductService] 浏览计数失败 product=%d: %v", id, err)
	}
	return product, nil
}

// ==================== 响应转换 ====================

// ToProductResp 组装商品响应
func (s *ProductService) ToProductResp(p *model.Product) dto.ProductResp {
	variants := p.Variants
	if variants == nil {
		variants = model.VariantList{}
	}
	attrs := p.ProductAttributes
	if attrs == nil {
		attrs = model.SelectionList{}
	}
	return dto.ProductResp{
		ID:                p.ID,
		StoreID:           p.StoreID,
		CategoryID:        p.CategoryID,
		SubCategoryID:     p.SubCategoryID,
		Name:              p.Name,
		Slug:              p.Slug,
		Description:       p.Description,
		Price:             centsToPrice(p.PriceAmount),
		SalePrice:         centsToPrice(p.SalePriceAmount),
		IsOnSale:          p.IsOnSale,
		Currency:          p.CurrencyCode,
		Stock:             p.Stock,
		HasVariants:       p.HasVariants,
		TotalStock:        p.TotalStock,
		ProductAttributes: attrs,
		Variants:          variants,
		Images:            p.Images,
		Tags:              p.Tags,
		State:             p.State,
		ViewCount:         p.ViewCount,
		OrderCount:        p.OrderCount,
	}
}

// ==================== 内部辅助 ====================

// recomputeStock 统一维护库存汇总不变式
func (s *ProductService) recomputeStock(p *model.Product) {
	if p.HasVariants {
		p.TotalStock = p.Variants.TotalStock()
	} else {
		p.TotalStock = p.Stock
	}
}

// adjustCategoryStats 分类统计增减，失败只记日志 (夜间对账兜底)
func (s *ProductService) adjustCategoryStats(ctx context.Context, categoryID int64, productDelta, variantDelta int64) {
	if categoryID <= 0 || (productDelta == 0 && variantDelta == 0) {
		return
	}
	if err := s.categoryRepo.AdjustCounts(ctx, categoryID, productDelta, variantDelta); err != nil {
		log.Printf("[ProductService] 分类统计更新失败 category=%d: %v", categoryID, err)
	}
}

// notifyStorefront 变更后异步通知店面刷新缓存
func (s *ProductService) notifyStorefront(storeID, productID int64) {
	if s.webhook == nil {
		return
	}
	go func() {
		store, err := s.storeRepo.GetByID(context.Background(), storeID)
		if err != nil || store.RevalidateUrl == "" {
			return
		}
		s.webhook.RevalidateProduct(store.RevalidateUrl, storeID, productID)
	}()
}

func priceToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func centsToPrice(amount int64) float64 {
	return float64(amount) / 100
}

func boolToDelta(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func selectionsFromInput(inputs []dto.AttributeSelectionInput) model.SelectionList {
	out := make(model.SelectionList, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, model.AttributeSelection{
			AttributeID: in.AttributeID,
			ValueIDs:    in.ValueIDs,
		})
	}
	return out
}

// variantsFromInput 变体录入转为规范形态：
// stock 缺席按 0，images 缺席按空，is_active 缺席按 true
func variantsFromInput(inputs []dto.ProductVariantInput) model.VariantList {
	out := make(model.VariantList, 0, len(inputs))
	for _, in := range inputs {
		attrs := make([]model.VariantAttributeValue, 0, len(in.Attributes))
		for _, a := range in.Attributes {
			attrs = append(attrs, model.VariantAttributeValue{
				AttributeID:   a.AttributeID,
				AttributeName: a.AttributeName,
				ValueID:       a.ValueID,
				Value:         a.Value,
				ColorHex:      a.ColorHex,
			})
		}

		v := model.ProductVariant{
			ID:         in.ID,
			SKU:        in.SKU,
			Attributes: attrs,
			Images:     in.Images,
			IsActive:   true,
		}
		if in.Price != nil {
			amount := priceToCents(*in.Price)
			v.Price = &amount
		}
		if in.SalePrice != nil {
			amount := priceToCents(*in.SalePrice)
			v.SalePrice = &amount
		}
		if in.Stock != nil {
			v.Stock = *in.Stock
		}
		if in.Images == nil {
			v.Images = []string{}
		}
		if in.IsActive != nil {
			v.IsActive = *in.IsActive
		}
		out = append(out, v)
	}
	return out
}
