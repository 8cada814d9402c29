package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopfarm_v1/internal/controller"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/model"

	_ "shopfarm_v1/docs"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtl *controller.AuthController,
	storeCtl *controller.StoreController,
	attributeCtl *controller.AttributeController,
	productCtl *controller.ProductController,
	variantCtl *controller.VariantController,
	categoryCtl *controller.CategoryController,
	storefrontCtl *controller.StorefrontController) {

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.POST("/refresh", authCtl.Refresh)
			auth.GET("/profile", middleware.JWTAuth(), authCtl.Profile)
		}

		// storefront 店面公开读 (不鉴权)
		storefront := api.Group("/storefront")
		{
			storefront.GET("/:subdomain", storefrontCtl.ResolveStore)
			storefront.GET("/:subdomain/products", storefrontCtl.GetStorefrontProducts)
			storefront.GET("/:subdomain/products/:id", storefrontCtl.GetStorefrontProduct)
		}

		// categories 平台分类 (读公开)
		api.GET("/categories", categoryCtl.GetCategoryTree)

		// 变体公开读：游客只见上架商品，带 store_id 的店主视角走归属校验
		api.GET("/products/:id/variants", middleware.OptionalAuth(), variantCtl.GetVariants)

		// 以下均需登录
		authed := api.Group("")
		authed.Use(middleware.JWTAuth(), middleware.AuditContext())

		// store 店铺管理
		stores := authed.Group("/stores")
		stores.Use(middleware.RequireRole(model.RoleSeller, model.RoleAdmin))
		{
			stores.POST("", storeCtl.CreateStore)
			stores.GET("", storeCtl.GetMyStores)
			stores.GET("/:id", storeCtl.GetStore)
			stores.PATCH("/:id", storeCtl.UpdateStore)
		}

		// attribute 属性目录
		attributes := authed.Group("/attributes")
		attributes.Use(middleware.RequireRole(model.RoleSeller, model.RoleAdmin))
		{
			attributes.GET("", attributeCtl.GetAttributes)
			attributes.GET("/:id", attributeCtl.GetAttribute)
			attributes.POST("", attributeCtl.CreateAttribute)
			attributes.PATCH("/:id", attributeCtl.UpdateAttribute)
			attributes.DELETE("/:id", attributeCtl.DeleteAttribute)
		}

		// product 商品与变体
		products := authed.Group("/products")
		products.Use(middleware.RequireRole(model.RoleSeller, model.RoleAdmin))
		{
			products.GET("", productCtl.GetProducts)
			products.POST("", productCtl.CreateProduct)
			products.GET("/export",
				middleware.StoreActionRateLimit(middleware.ActionExport, 0),
				productCtl.ExportProducts)
			products.POST("/ai/describe",
				middleware.StoreActionRateLimit(middleware.ActionAIDescribe, 0),
				productCtl.AIDescribe)
			products.GET("/:id", productCtl.GetProduct)
			products.PATCH("/:id", productCtl.UpdateProduct)
			products.DELETE("/:id", productCtl.DeleteProduct)

			products.POST("/:id/images", productCtl.UploadImages)
			products.POST("/:id/images/import", productCtl.ImportImage)

			// 变体 (列表读挂在公开区)
			products.POST("/:id/generate-variants",
				middleware.ActionRateLimit(middleware.ActionRegenerate, 0),
				variantCtl.GenerateVariants)
			products.PUT("/:id/variants", variantCtl.BulkUpdateVariants)
			products.PATCH("/:id/variants/:variant_id", variantCtl.UpdateVariant)
			products.DELETE("/:id/variants/:variant_id", variantCtl.DeleteVariant)
			products.GET("/:id/image-groups", variantCtl.GetImageGroups)
		}

		// admin 管理端
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		{
			admin.POST("/stores/:id/status", storeCtl.SetStoreStatus)
			admin.POST("/categories", categoryCtl.CreateCategory)
			admin.DELETE("/categories/:id", categoryCtl.DeleteCategory)
		}
	}
}
