package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopfarm_v1/internal/repository"
)

// ==================== StatsReconcileTask 统计对账任务 ====================

// StatsReconcileTask 夜间统计对账
// 白天的分类/店铺计数走增量修正，失败只记日志；
// 这里整表重算兜底：分类商品数、店铺商品数、变体库存合计漂移修复
type StatsReconcileTask struct {
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	StoreRepo    repository.StoreRepository
	Cron         *cron.Cron

	batchSize int
}

func NewStatsReconcileTask(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	storeRepo repository.StoreRepository,
) *StatsReconcileTask {
	return &StatsReconcileTask{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		StoreRepo:    storeRepo,
		Cron:         cron.New(cron.WithSeconds()),
		batchSize:    500,
	}
}

// Start 启动定时任务
func (t *StatsReconcileTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次统计对账...")
		t.ReconcileNow(ctx)
	}()

	// 每天凌晨 3 点
	_, err := t.Cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.ReconcileNow(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动统计对账定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("统计对账任务已启动 (每天 03:00 执行)")
}

// Stop 停止定时任务
func (t *StatsReconcileTask) Stop() {
	t.Cron.Stop()
	log.Println("统计对账任务已停止")
}

// ReconcileNow 立即执行一轮对账
func (t *StatsReconcileTask) ReconcileNow(ctx context.Context) {
	start := time.Now()

	t.reconcileCategories(ctx)
	t.reconcileStores(ctx)
	t.repairTotalStock(ctx)

	log.Printf("[Cron] 本轮统计对账完成，耗时 %v", time.Since(start))
}

// reconcileCategories 分类计数重算
func (t *StatsReconcileTask) reconcileCategories(ctx context.Context) {
	stats, err := t.ProductRepo.CountByCategory(ctx)
	if err != nil {
		log.Printf("[Cron] 分类统计查询失败: %v", err)
		return
	}

	categories, err := t.CategoryRepo.ListAll(ctx)
	if err != nil {
		log.Printf("[Cron] 分类列表查询失败: %v", err)
		return
	}

	fixed := 0
	for _, cat := range categories {
		s := stats[cat.ID] // 无商品的分类取零值，照样归零
		if cat.ProductCount == s.Total && cat.VariantProductCount == s.WithVariant {
			continue
		}
		if err := t.CategoryRepo.SetCounts(ctx, cat.ID, s.Total, s.WithVariant); err != nil {
			log.Printf("[Cron] 分类 [%d] 计数修正失败: %v", cat.ID, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("[Cron] 分类计数修正 %d 条", fixed)
	}
}

// reconcileStores 店铺商品数重算
func (t *StatsReconcileTask) reconcileStores(ctx context.Context) {
	counts, err := t.ProductRepo.CountByStore(ctx)
	if err != nil {
		log.Printf("[Cron] 店铺统计查询失败: %v", err)
		return
	}

	page := 1
	fixed := 0
	for {
		stores, _, err := t.StoreRepo.List(ctx, page, 200)
		if err != nil {
			log.Printf("[Cron] 店铺列表查询失败: %v", err)
			return
		}
		if len(stores) == 0 {
			break
		}

		for _, store := range stores {
			count := counts[store.ID]
			if int64(store.ProductCount) == count {
				continue
			}
			err := t.StoreRepo.UpdateFields(ctx, store.ID, map[string]interface{}{
				"product_count": count,
			})
			if err != nil {
				log.Printf("[Cron] 店铺 [%d] 商品数修正失败: %v", store.ID, err)
				continue
			}
			fixed++
		}
		page++
	}

	if fixed > 0 {
		log.Printf("[Cron] 店铺商品数修正 %d 条", fixed)
	}
}

// repairTotalStock 变体库存合计漂移修复
// 按主键游标批量遍历，逐条重算 total_stock
func (t *StatsReconcileTask) repairTotalStock(ctx context.Context) {
	var afterID int64
	fixed := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 库存对账超时停止")
			return
		default:
		}

		products, err := t.ProductRepo.ListBatch(ctx, afterID, t.batchSize)
		if err != nil {
			log.Printf("[Cron] 商品批量查询失败: %v", err)
			return
		}
		if len(products) == 0 {
			break
		}

		for _, p := range products {
			afterID = p.ID

			want := p.Stock
			if p.HasVariants {
				want = p.Variants.TotalStock()
			}
			if p.TotalStock == want {
				continue
			}

			err := t.ProductRepo.UpdateFields(ctx, p.ID, map[string]interface{}{
				"total_stock": want,
			})
			if err != nil {
				log.Printf("[Cron] 商品 [%d] 库存修正失败: %v", p.ID, err)
				continue
			}
			fixed++
		}
	}

	if fixed > 0 {
		log.Printf("[Cron] 库存合计修正 %d 条", fixed)
	}
}
