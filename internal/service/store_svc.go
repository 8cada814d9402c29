package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
	"shopfarm_v1/pkg/utils"
)

// ==================== StoreService 店铺服务 ====================

// 子域名解析缓存时长
// 店面每个请求都要做一次 subdomain → store 解析，短 TTL 缓存削掉绝大部分查询
const subdomainCacheTTL = 5 * time.Minute

// StoreService 店铺开设与管理，以及店面侧的子域名解析
type StoreService struct {
	storeRepo repository.StoreRepository
	cache     *utils.TTLCache
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		cache:     utils.NewTTLCache(),
	}
}

// CreateStore 卖家开店
func (s *StoreService) CreateStore(ctx context.Context, ownerID int64, req *dto.CreateStoreReq) (*model.Store, error) {
	subdomain := req.Subdomain
	if subdomain == "" {
		subdomain = slug.Make(req.Name)
	} else {
		subdomain = slug.Make(subdomain)
	}

	if _, err := s.storeRepo.GetBySubdomain(ctx, subdomain); err == nil {
		return nil, ErrSubdomainTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	locale := req.DefaultLocale
	if locale == "" {
		locale = "en"
	}

	store := &model.Store{
		OwnerID:       ownerID,
		Name:          req.Name,
		Subdomain:     subdomain,
		NameTr:        marshalTr(req.NameTr),
		DefaultLocale: locale,
		RevalidateUrl: req.RevalidateUrl,
		Status:        model.StoreStatusPending,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// GetStoreForOwner 归属校验获取
func (s *StoreService) GetStoreForOwner(ctx context.Context, id, ownerID int64) (*model.Store, error) {
	return s.storeRepo.GetByIDForOwner(ctx, id, ownerID)
}

// ListOwnStores 卖家名下店铺
func (s *StoreService) ListOwnStores(ctx context.Context, ownerID int64) ([]model.Store, error) {
	return s.storeRepo.ListByOwner(ctx, ownerID)
}

// UpdateStore 更新店铺 (店主)
func (s *StoreService) UpdateStore(ctx context.Context, ownerID int64, req *dto.UpdateStoreReq) (*model.Store, error) {
	store, err := s.storeRepo.GetByIDForOwner(ctx, req.ID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.NameTr != nil {
		store.NameTr = marshalTr(req.NameTr)
	}
	if req.LogoUrl != nil {
		store.LogoUrl = *req.LogoUrl
	}
	if req.DefaultLocale != nil {
		store.DefaultLocale = *req.DefaultLocale
	}
	if req.Theme != nil {
		b, _ := json.Marshal(req.Theme)
		store.Theme = datatypes.JSON(b)
	}
	if req.RevalidateUrl != nil {
		store.RevalidateUrl = *req.RevalidateUrl
	}

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}
	// 店铺信息变了，解析缓存立即失效
	s.cache.Delete(store.Subdomain)
	return store, nil
}

// SetStoreStatus 审核/封禁 (管理员)
func (s *StoreService) SetStoreStatus(ctx context.Context, id int64, status int) error {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storeRepo.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return err
	}
	s.cache.Delete(store.Subdomain)
	return nil
}

// ResolveSubdomain 店面侧子域名解析 (带 TTL 缓存)
// 只返回正常状态的店铺
func (s *StoreService) ResolveSubdomain(ctx context.Context, subdomain string) (*model.Store, error) {
	if cached, ok := s.cache.Get(subdomain); ok {
		return cached.(*model.Store), nil
	}

	store, err := s.storeRepo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if store.Status != model.StoreStatusActive {
		return nil, gorm.ErrRecordNotFound
	}

	s.cache.Set(subdomain, store, subdomainCacheTTL)
	return store, nil
}

// ToStoreResp 组装店铺响应
func (s *StoreService) ToStoreResp(store *model.Store) dto.StoreResp {
	return dto.StoreResp{
		ID:            store.ID,
		OwnerID:       store.OwnerID,
		Name:          store.Name,
		Subdomain:     store.Subdomain,
		LogoUrl:       store.LogoUrl,
		DefaultLocale: store.DefaultLocale,
		ProductCount:  store.ProductCount,
		Status:        store.Status,
	}
}
