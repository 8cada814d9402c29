package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/repository"
	"shopfarm_v1/internal/service"
	"shopfarm_v1/pkg/utils"
)

type ProductController struct {
	productService *service.ProductService
	storeService   *service.StoreService
	storageService *service.StorageService
	exportService  *service.ExportService
	aiService      *service.AIService
}

func NewProductController(
	productService *service.ProductService,
	storeService *service.StoreService,
	storageService *service.StorageService,
	exportService *service.ExportService,
	aiService *service.AIService,
) *ProductController {
	return &ProductController{
		productService: productService,
		storeService:   storeService,
		storageService: storageService,
		exportService:  exportService,
		aiService:      aiService,
	}
}

// ==================== 查询接口 ====================

// GetProducts 获取商品列表
// @Summary 获取指定店铺的商品列表
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param store_id query int true "店铺ID"
// @Param state query string false "状态筛选"
// @Param category_id query int false "分类筛选"
// @Param keyword query string false "名称搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Router /api/products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)

	filter := repository.ProductFilter{
		StoreID:    storeID,
		CategoryID: categoryID,
		State:      c.Query("state"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		PageSize:   pageSize,
	}

	ctx := c.Request.Context()
	products, total, err := ctrl.productService.ListProducts(ctx, filter)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.ProductResp, 0, len(products))
	for _, p := range products {
		respList = append(respList, ctrl.productService.ToProductResp(&p))
	}

	c.JSON(200, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct 获取商品详情
// @Summary 获取单个商品详情
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, storeID, ok := ctrl.productScope(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.GetProductForStore(ctx, id, storeID)
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// ==================== CRUD 接口 ====================

// CreateProduct 创建商品
// @Summary 创建商品 (JSON 或 multipart，multipart 时 variants/product_attributes 为 JSON 字符串)
// @Tags Product
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateProductReq true "商品信息"
// @Success 201 {object} dto.ProductResp
// @Router /api/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductReq
	var imageURLs []string

	if isMultipart(c) {
		parsed, files, ok := ctrl.bindCreateForm(c)
		if !ok {
			return
		}
		req = *parsed

		if len(files) > 0 {
			urls, err := ctrl.uploadFormFiles(c, files)
			if err != nil {
				c.JSON(500, gin.H{"code": 500, "message": "图片上传失败: " + err.Error()})
				return
			}
			imageURLs = urls
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
			return
		}
	}

	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.CreateProduct(ctx, &req, imageURLs)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "创建失败: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// UpdateProduct 更新商品
// @Summary 部分更新商品，has_variants=false 会清空变体
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.UpdateProductReq true "更新内容"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	var req dto.UpdateProductReq
	if isMultipart(c) {
		parsed, ok := ctrl.bindUpdateForm(c)
		if !ok {
			return
		}
		req = *parsed
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
			return
		}
		// JSON 路径用 nil/非 nil 区分字段缺席 ("[]" 解析为非 nil 空切片)
		req.HasProductAttributes = req.ProductAttributes != nil
		req.HasVariantsPayload = req.Variants != nil
	}
	req.ID = id

	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.UpdateProduct(ctx, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "更新失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// DeleteProduct 删除商品
// @Summary 删除商品 (软删)
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, storeID, ok := ctrl.productScope(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.productService.DeleteProduct(ctx, id, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "删除失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "删除成功"})
}

// ==================== 图片接口 ====================

// UploadImages 上传商品图片
// @Summary 批量上传图片并追加到商品 (整批并发上传，任一失败整个请求失败)
// @Tags Product
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id formData int true "店铺ID"
// @Param images formData file true "图片文件 (可多个)"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id}/images [post]
func (ctrl *ProductController) UploadImages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}
	storeID, err := strconv.ParseInt(c.PostForm("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "表单解析失败"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(400, gin.H{"code": 400, "message": "请上传图片文件"})
		return
	}

	urls, err := ctrl.uploadFormFiles(c, files)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "图片上传失败: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.AddProductImages(ctx, id, storeID, urls)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "保存失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// ImportImage 按 URL 导入商品图片
// @Summary 拉取远程图片并转存到对象存储
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id}/images/import [post]
func (ctrl *ProductController) ImportImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	var req struct {
		StoreID int64  `json:"store_id" binding:"required"`
		Url     string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	data, contentType, err := utils.DownloadImage(req.Url)
	if err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "图片下载失败: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	url, err := ctrl.storageService.Upload(ctx, data, req.Url, contentType)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "图片转存失败: " + err.Error()})
		return
	}

	product, err := ctrl.productService.AddProductImages(ctx, id, req.StoreID, []string{url})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "保存失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// ==================== 导出与 AI ====================

// ExportProducts 导出店铺商品
// @Summary 导出店铺全部商品为 xlsx (一行一个变体)
// @Tags Product
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param store_id query int true "店铺ID"
// @Success 200 {file} binary
// @Router /api/products/export [get]
func (ctrl *ProductController) ExportProducts(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	ctx := c.Request.Context()
	file, err := ctrl.exportService.ExportStoreProducts(ctx, storeID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "导出失败: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=products-%d.xlsx", storeID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "写入响应失败"})
		return
	}
}

// AIDescribe AI 生成商品文案
// @Summary 根据关键词生成标题/描述/标签
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AIDescribeReq true "生成参数"
// @Success 200 {object} dto.AIDescribeResp
// @Router /api/products/ai/describe [post]
func (ctrl *ProductController) AIDescribe(c *gin.Context) {
	var req dto.AIDescribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	if !ctrl.aiService.Enabled() {
		c.JSON(503, gin.H{"code": 503, "message": "AI 服务未配置"})
		return
	}

	extra := ""
	if req.Locale != "" {
		extra = "Write the output in locale: " + req.Locale
	}

	ctx := c.Request.Context()
	content, err := ctrl.aiService.GenerateProductInfo(ctx, req.Prompt, extra)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "生成失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.AIDescribeResp{
			Title:       content.Title,
			Description: content.Description,
			Tags:        content.Tags,
		},
	})
}

// ==================== 表单解析辅助 ====================

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// productScope 解析路径商品 ID + store_id 并校验店铺归属
func (ctrl *ProductController) productScope(c *gin.Context) (id, storeID int64, ok bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return 0, 0, false
	}
	storeID, err = strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return 0, 0, false
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return 0, 0, false
	}
	return id, storeID, true
}

// bindCreateForm 解析 multipart 创建表单
// product_attributes / variants / tags 为 JSON 字符串，解析失败直接 400
func (ctrl *ProductController) bindCreateForm(c *gin.Context) (*dto.CreateProductReq, []*multipart.FileHeader, bool) {
	req := &dto.CreateProductReq{}

	req.StoreID, _ = strconv.ParseInt(c.PostForm("store_id"), 10, 64)
	req.Name = c.PostForm("name")
	req.Description = c.PostForm("description")
	req.Price, _ = strconv.ParseFloat(c.DefaultPostForm("price", "0"), 64)
	req.SalePrice, _ = strconv.ParseFloat(c.DefaultPostForm("sale_price", "0"), 64)
	req.IsOnSale = c.PostForm("is_on_sale") == "true"
	req.Currency = c.PostForm("currency")
	req.Stock, _ = strconv.Atoi(c.DefaultPostForm("stock", "0"))
	req.CategoryID, _ = strconv.ParseInt(c.PostForm("category_id"), 10, 64)
	req.SubCategoryID, _ = strconv.ParseInt(c.PostForm("sub_category_id"), 10, 64)

	if req.StoreID <= 0 || req.Name == "" {
		c.JSON(400, gin.H{"code": 400, "message": "store_id 与 name 为必填项"})
		return nil, nil, false
	}

	if raw := c.PostForm("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Tags); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "tags 字段不是合法 JSON"})
			return nil, nil, false
		}
	}
	if raw := c.PostForm("product_attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ProductAttributes); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "product_attributes 字段不是合法 JSON"})
			return nil, nil, false
		}
	}
	if raw := c.PostForm("variants"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variants); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "variants 字段不是合法 JSON"})
			return nil, nil, false
		}
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	return req, files, true
}

// bindUpdateForm 解析 multipart 更新表单，字段出现过才应用
func (ctrl *ProductController) bindUpdateForm(c *gin.Context) (*dto.UpdateProductReq, bool) {
	req := &dto.UpdateProductReq{}
	req.StoreID, _ = strconv.ParseInt(c.PostForm("store_id"), 10, 64)
	if req.StoreID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return nil, false
	}

	if v, ok := c.GetPostForm("name"); ok {
		req.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		req.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "price 字段不是合法数字"})
			return nil, false
		}
		req.Price = &f
	}
	if v, ok := c.GetPostForm("sale_price"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "sale_price 字段不是合法数字"})
			return nil, false
		}
		req.SalePrice = &f
	}
	if v, ok := c.GetPostForm("is_on_sale"); ok {
		b := v == "true"
		req.IsOnSale = &b
	}
	if v, ok := c.GetPostForm("stock"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "stock 字段不是合法数字"})
			return nil, false
		}
		req.Stock = &n
	}
	if v, ok := c.GetPostForm("has_variants"); ok {
		b := v == "true"
		req.HasVariants = &b
	}
	if v, ok := c.GetPostForm("category_id"); ok {
		n, _ := strconv.ParseInt(v, 10, 64)
		req.CategoryID = &n
	}
	if v, ok := c.GetPostForm("sub_category_id"); ok {
		n, _ := strconv.ParseInt(v, 10, 64)
		req.SubCategoryID = &n
	}
	if v, ok := c.GetPostForm("state"); ok {
		req.State = &v
	}
	if raw, ok := c.GetPostForm("tags"); ok {
		if err := json.Unmarshal([]byte(raw), &req.Tags); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "tags 字段不是合法 JSON"})
			return nil, false
		}
	}
	if raw, ok := c.GetPostForm("product_attributes"); ok {
		if err := json.Unmarshal([]byte(raw), &req.ProductAttributes); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "product_attributes 字段不是合法 JSON"})
			return nil, false
		}
		req.HasProductAttributes = true
	}
	if raw, ok := c.GetPostForm("variants"); ok {
		if err := json.Unmarshal([]byte(raw), &req.Variants); err != nil {
			c.JSON(400, gin.H{"code": 400, "message": "variants 字段不是合法 JSON"})
			return nil, false
		}
		req.HasVariantsPayload = true
	}

	return req, true
}

// uploadFormFiles 读取表单文件并整批并发上传
func (ctrl *ProductController) uploadFormFiles(c *gin.Context, headers []*multipart.FileHeader) ([]string, error) {
	files := make([]service.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.UploadFile{
			Data:        data,
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
		})
	}

	return ctrl.storageService.UploadBatch(c.Request.Context(), files)
}
