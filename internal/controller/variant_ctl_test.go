package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
	"shopfarm_v1/internal/service"
)

// ==================== 测试辅助 ====================

const testOwnerID int64 = 10

type variantCtlFixture struct {
	router     *gin.Engine
	db         *gorm.DB
	productSvc *service.ProductService
	storeID    int64
	token      string
}

// 真实服务链路 + 假登录中间件 (跳过 JWT 校验，直接注入身份)；
// 变体列表读和线上一样挂在公开区，店主视角靠真实令牌走 OptionalAuth
func setupVariantCtlTest(t *testing.T) *variantCtlFixture {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Store{}, &model.Attribute{}, &model.Product{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	productSvc := service.NewProductService(
		repository.NewProductRepository(db),
		repository.NewAttributeRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewStoreRepository(db),
		nil,
	)
	storeSvc := service.NewStoreService(repository.NewStoreRepository(db))
	ctl := NewVariantController(productSvc, storeSvc)

	r := gin.New()
	r.Use(gin.Recovery())

	// 公开区：先于假登录注册，游客请求不带身份
	r.GET("/api/products/:id/variants", middleware.OptionalAuth(), ctl.GetVariants)

	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, testOwnerID)
		c.Set(middleware.ContextKeyRole, model.RoleSeller)
		c.Next()
	})

	products := r.Group("/api/products")
	{
		products.POST("/:id/generate-variants", ctl.GenerateVariants)
		products.PUT("/:id/variants", ctl.BulkUpdateVariants)
		products.PATCH("/:id/variants/:variant_id", ctl.UpdateVariant)
		products.DELETE("/:id/variants/:variant_id", ctl.DeleteVariant)
		products.GET("/:id/image-groups", ctl.GetImageGroups)
	}

	store := model.Store{
		OwnerID:   testOwnerID,
		Name:      "Test Store",
		Subdomain: "test-store",
		Status:    model.StoreStatusActive,
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("写入店铺失败: %v", err)
	}

	token, err := middleware.GenerateAccessToken(testOwnerID, "owner", model.RoleSeller)
	if err != nil {
		t.Fatalf("签发测试令牌失败: %v", err)
	}

	return &variantCtlFixture{router: r, db: db, productSvc: productSvc, storeID: store.ID, token: token}
}

func (f *variantCtlFixture) seedCatalog(t *testing.T) (colorID, sizeID int64) {
	attrs := []model.Attribute{
		{
			StoreID:       f.storeID,
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
			StoreID: f.storeID,
			Name:    "Size",
			Slug:    "size",
			Type:    model.AttributeTypeText,
			Values: model.AttributeValueList{
				{ID: 1, Value: "S"},
				{ID: 2, Value: "M"},
			},
			NextValueID: 3,
		},
	}
	for i := range attrs {
		if err := f.db.Create(&attrs[i]).Error; err != nil {
			t.Fatalf("写入属性失败: %v", err)
		}
	}
	return attrs[0].ID, attrs[1].ID
}

func (f *variantCtlFixture) seedProduct(t *testing.T, req *dto.CreateProductReq) *model.Product {
	req.StoreID = f.storeID
	product, err := f.productSvc.CreateProduct(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("写入商品失败: %v", err)
	}
	return product
}

func (f *variantCtlFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("编码请求失败: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// doGuest 不带登录态的请求
func (f *variantCtlFixture) doGuest(t *testing.T, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v\n%s", err, w.Body.String())
	}
	return resp
}

// ==================== 接口测试 ====================

func TestGetVariantsEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	stock := 3
	product := f.seedProduct(t, &dto.CreateProductReq{
		Name: "Tee",
		Variants: []dto.ProductVariantInput{
			{
				Attributes: []dto.VariantAttributeInput{{AttributeID: 1, ValueID: 1}},
				Stock:      &stock,
			},
		},
	})

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d/variants?store_id=%d", product.ID, f.storeID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	if data["has_variants"] != true {
		t.Error("has_variants 应为 true")
	}
	if data["total_stock"].(float64) != 3 {
		t.Errorf("total_stock=%v", data["total_stock"])
	}
	if len(data["variants"].([]interface{})) != 1 {
		t.Errorf("variants 数量异常: %v", data["variants"])
	}
}

func TestGetVariantsPublicEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	stock := 3
	product := f.seedProduct(t, &dto.CreateProductReq{
		Name: "Tee",
		Variants: []dto.ProductVariantInput{
			{
				Attributes: []dto.VariantAttributeInput{{AttributeID: 1, ValueID: 1}},
				Stock:      &stock,
			},
		},
	})

	// 新建商品默认草稿，游客不可见
	w := f.doGuest(t, http.MethodGet, fmt.Sprintf("/api/products/%d/variants", product.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("草稿商品对游客应 404，得到 %d", w.Code)
	}

	err := f.db.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("state", model.ProductStateActive).Error
	if err != nil {
		t.Fatalf("上架失败: %v", err)
	}

	w = f.doGuest(t, http.MethodGet, fmt.Sprintf("/api/products/%d/variants", product.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	if len(data["variants"].([]interface{})) != 1 {
		t.Errorf("variants 数量异常: %v", data["variants"])
	}

	// 游客带 store_id 想走店主视角，归属校验拦下
	w = f.doGuest(t, http.MethodGet,
		fmt.Sprintf("/api/products/%d/variants?store_id=%d", product.ID, f.storeID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("游客带 store_id 应 404，得到 %d", w.Code)
	}
}

func TestGetVariantsRepositoryErrorIsNot404(t *testing.T) {
	f := setupVariantCtlTest(t)

	// 表没了属于真实故障，不能伪装成商品不存在
	if err := f.db.Migrator().DropTable(&model.Product{}); err != nil {
		t.Fatalf("删表失败: %v", err)
	}

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/products/1/variants?store_id=%d", f.storeID), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("数据库故障应 500，得到 %d body=%s", w.Code, w.Body.String())
	}
}

func TestGenerateVariantsEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	colorID, sizeID := f.seedCatalog(t)
	product := f.seedProduct(t, &dto.CreateProductReq{
		Name: "Tee",
		ProductAttributes: []dto.AttributeSelectionInput{
			{AttributeID: colorID, ValueIDs: []int64{1, 2}},
			{AttributeID: sizeID, ValueIDs: []int64{1, 2}},
		},
	})

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/generate-variants?store_id=%d", product.ID, f.storeID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	if len(data["variants"].([]interface{})) != 4 {
		t.Errorf("期望 2×2=4 个变体，得到 %v", data["variants"])
	}
	if data["has_variants"] != true {
		t.Error("has_variants 应为 true")
	}
}

func TestGenerateVariantsNoAttributesEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	product := f.seedProduct(t, &dto.CreateProductReq{Name: "Mug"})

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/generate-variants?store_id=%d", product.ID, f.storeID), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestVariantEndpointsOwnership(t *testing.T) {
	f := setupVariantCtlTest(t)

	// 别人的店铺
	other := model.Store{
		OwnerID:   99,
		Name:      "Other Store",
		Subdomain: "other-store",
		Status:    model.StoreStatusActive,
	}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("写入店铺失败: %v", err)
	}

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/products/1/variants?store_id=%d", other.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("跨店访问应 404，得到 %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp["message"] != "店铺不存在" {
		t.Errorf("message=%v", resp["message"])
	}
}

func TestBulkVariantsMissingInputEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	product := f.seedProduct(t, &dto.CreateProductReq{Name: "Mug"})

	w := f.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d/variants?store_id=%d", product.ID, f.storeID),
		map[string]interface{}{"regenerate": false})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteVariantEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	stock := 3
	product := f.seedProduct(t, &dto.CreateProductReq{
		Name:  "Tee",
		Stock: 5,
		Variants: []dto.ProductVariantInput{
			{
				Attributes: []dto.VariantAttributeInput{{AttributeID: 1, ValueID: 1}},
				Stock:      &stock,
			},
		},
	})

	w := f.do(t, http.MethodDelete,
		fmt.Sprintf("/api/products/%d/variants/%s?store_id=%d", product.ID, product.Variants[0].ID, f.storeID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	if data["deleted"] != true {
		t.Error("deleted 应为 true")
	}
	if data["has_variants"] != false {
		t.Error("删光后 has_variants 应为 false")
	}
	if data["total_stock"].(float64) != 5 {
		t.Errorf("total_stock=%v，期望回落到 stock 5", data["total_stock"])
	}

	// 再删同一个 → 404 变体不存在
	w = f.do(t, http.MethodDelete,
		fmt.Sprintf("/api/products/%d/variants/%s?store_id=%d", product.ID, product.Variants[0].ID, f.storeID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("重复删除应 404，得到 %d", w.Code)
	}
}

func TestImageGroupsEndpoint(t *testing.T) {
	f := setupVariantCtlTest(t)
	colorID, sizeID := f.seedCatalog(t)
	product := f.seedProduct(t, &dto.CreateProductReq{
		Name: "Tee",
		ProductAttributes: []dto.AttributeSelectionInput{
			{AttributeID: colorID, ValueIDs: []int64{1, 2}},
			{AttributeID: sizeID, ValueIDs: []int64{1, 2}},
		},
	})
	if _, err := f.productSvc.GenerateProductVariants(context.Background(), product.ID, f.storeID); err != nil {
		t.Fatalf("生成变体失败: %v", err)
	}

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d/image-groups?store_id=%d", product.ID, f.storeID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	resp := decodeEnvelope(t, w)
	groups := resp["data"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("按 Color 投影应为 2 组，得到 %d", len(groups))
	}
	first := groups[0].(map[string]interface{})
	if first["label"] != "Red" {
		t.Errorf("首组 label=%v", first["label"])
	}
}
