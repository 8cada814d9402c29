package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"shopfarm_v1/internal/controller"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
	"shopfarm_v1/internal/router"
	"shopfarm_v1/internal/service"
	"shopfarm_v1/internal/task"
	"shopfarm_v1/pkg/database"
)

// @title Shopfarm API
// @version 1.0
// @description 多租户独立站电商平台 API
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	middleware.LoadJWTConfigFromEnv()

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Auth,
		deps.Controllers.Store,
		deps.Controllers.Attribute,
		deps.Controllers.Product,
		deps.Controllers.Variant,
		deps.Controllers.Category,
		deps.Controllers.Storefront,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	StatsTask   *task.StatsReconcileTask
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Store     repository.StoreRepository
	Category  repository.CategoryRepository
	Attribute repository.AttributeRepository
	Product   repository.ProductRepository
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Store     *service.StoreService
	Category  *service.CategoryService
	Attribute *service.AttributeService
	Product   *service.ProductService
	Storage   *service.StorageService
	Export    *service.ExportService
	AI        *service.AIService
	Webhook   *service.WebhookService
}

// Controllers 控制器集合
type Controllers struct {
	Auth       *controller.AuthController
	Store      *controller.StoreController
	Attribute  *controller.AttributeController
	Product    *controller.ProductController
	Variant    *controller.VariantController
	Category   *controller.CategoryController
	Storefront *controller.StorefrontController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=shopfarm port=5432 sslmode=disable")

	db := database.InitDB(dsn, getEnv("GIN_MODE", "") != "release",
		// 账户与租户
		&model.User{}, &model.Store{},
		// 目录
		&model.Category{}, &model.Attribute{},
		// 商品 (变体与属性选择嵌入 jsonb)
		&model.Product{},
	)

	// 审计回调：自动填充 created_by/updated_by
	middleware.RegisterAuditCallbacks(db)

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:      repository.NewUserRepository(db),
		Store:     repository.NewStoreRepository(db),
		Category:  repository.NewCategoryRepository(db),
		Attribute: repository.NewAttributeRepository(db),
		Product:   repository.NewProductRepository(db),
	}

	// -------- 基础服务 --------
	storageSvc := initStorageService()
	aiSvc := service.NewAIService(getEnv("GEMINI_API_KEY", ""), getEnv("GEMINI_MODEL", ""))
	webhookSvc := service.NewWebhookService()

	// -------- 业务服务 --------
	services := &Services{
		Storage: storageSvc,
		AI:      aiSvc,
		Webhook: webhookSvc,
	}
	services.User = service.NewUserService(repos.User)
	services.Store = service.NewStoreService(repos.Store)
	services.Category = service.NewCategoryService(repos.Category)
	services.Attribute = service.NewAttributeService(repos.Attribute)
	services.Product = service.NewProductService(repos.Product, repos.Attribute, repos.Category, repos.Store, webhookSvc)
	services.Export = service.NewExportService(repos.Product)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:       controller.NewAuthController(services.User),
		Store:      controller.NewStoreController(services.Store),
		Attribute:  controller.NewAttributeController(services.Attribute, services.Store),
		Product:    controller.NewProductController(services.Product, services.Store, services.Storage, services.Export, services.AI),
		Variant:    controller.NewVariantController(services.Product, services.Store),
		Category:   controller.NewCategoryController(services.Category),
		Storefront: controller.NewStorefrontController(services.Store, services.Product),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "shopfarm"),
		LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./uploads"),
		LocalBase: getEnv("STORAGE_LOCAL_BASE", "/uploads"),
	})
	if err != nil {
		// 图片上传是硬依赖，带着空存储服务起不来不如直接失败
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	statsTask := task.NewStatsReconcileTask(
		deps.Repos.Product,
		deps.Repos.Category,
		deps.Repos.Store,
	)
	statsTask.Start()
	deps.StatsTask = statsTask

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
