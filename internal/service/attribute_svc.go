package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
)

// ==================== AttributeService 属性目录服务 ====================

// AttributeService 店铺属性目录维护
// 值 ID 由属性自带的 next_value_id 计数器分配，删除后不复用，
// 保证商品侧的 (attribute_id, value_id) 引用永不歧义
type AttributeService struct {
	attributeRepo repository.AttributeRepository
}

// NewAttributeService 创建属性服务
func NewAttributeService(attributeRepo repository.AttributeRepository) *AttributeService {
	return &AttributeService{attributeRepo: attributeRepo}
}

// ==================== 查询 ====================

// GetAttribute 归属校验获取
func (s *AttributeService) GetAttribute(ctx context.Context, id, storeID int64) (*model.Attribute, error) {
	return s.attributeRepo.GetByIDForStore(ctx, id, storeID)
}

// ListAttributes 店铺属性列表
func (s *AttributeService) ListAttributes(ctx context.Context, storeID int64) ([]model.Attribute, error) {
	return s.attributeRepo.ListByStore(ctx, storeID)
}

// ==================== 维护 ====================

// CreateAttribute 创建属性
func (s *AttributeService) CreateAttribute(ctx context.Context, req *dto.CreateAttributeReq) (*model.Attribute, error) {
	attrType := req.Type
	if attrType == "" {
		attrType = model.AttributeTypeText
	}
	if attrType != model.AttributeTypeColor {
		for _, v := range req.Values {
			if v.ColorHex != "" {
				return nil, ErrInvalidValueType
			}
		}
	}

	attrSlug := slug.Make(req.Name)
	if _, err := s.attributeRepo.GetBySlug(ctx, req.StoreID, attrSlug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attr := &model.Attribute{
		StoreID:       req.StoreID,
		Name:          req.Name,
		NameTr:        marshalTr(req.NameTr),
		Slug:          attrSlug,
		Type:          attrType,
		RequiresImage: req.RequiresImage,
		SortOrder:     req.SortOrder,
		NextValueID:   1,
	}
	attr.Values = allocateValues(attr, req.Values)

	if err := s.attributeRepo.Create(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// UpdateAttribute 更新属性
// 值列表整体提交：带原 ID 的保留编辑，ID=0 的新增分配 ID，缺席的删除
func (s *AttributeService) UpdateAttribute(ctx context.Context, req *dto.UpdateAttributeReq) (*model.Attribute, error) {
	attr, err := s.attributeRepo.GetByIDForStore(ctx, req.ID, req.StoreID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		attr.Name = *req.Name
		// slug 保持不变：商品侧不引用 slug，但店面 URL 依赖它的稳定性
	}
	if req.NameTr != nil {
		attr.NameTr = marshalTr(req.NameTr)
	}
	if req.RequiresImage != nil {
		attr.RequiresImage = *req.RequiresImage
	}
	if req.SortOrder != nil {
		attr.SortOrder = *req.SortOrder
	}
	if req.Values != nil {
		attr.Values = allocateValues(attr, req.Values)
	}

	if err := s.attributeRepo.Save(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// DeleteAttribute 删除属性
// 商品里的陈旧引用不阻塞删除：生成器对缺失属性静默跳过
func (s *AttributeService) DeleteAttribute(ctx context.Context, id, storeID int64) error {
	if _, err := s.attributeRepo.GetByIDForStore(ctx, id, storeID); err != nil {
		return err
	}
	return s.attributeRepo.Delete(ctx, id)
}

// ==================== 内部辅助 ====================

// allocateValues 重建值列表，为新值分配 ID 并推进计数器
func allocateValues(attr *model.Attribute, inputs []dto.AttributeValueInput) model.AttributeValueList {
	existing := make(map[int64]bool, len(attr.Values))
	for _, v := range attr.Values {
		existing[v.ID] = true
	}

	values := make(model.AttributeValueList, 0, len(inputs))
	for i, in := range inputs {
		id := in.ID
		if id == 0 || !existing[id] {
			id = attr.NextValueID
			attr.NextValueID++
		}
		sortOrder := in.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		values = append(values, model.AttributeValue{
			ID:        id,
			Value:     in.Value,
			ValueTr:   in.ValueTr,
			ColorHex:  in.ColorHex,
			SortOrder: sortOrder,
		})
	}
	return values
}

func marshalTr(tr map[string]string) datatypes.JSON {
	if len(tr) == 0 {
		return nil
	}
	b, _ := json.Marshal(tr)
	return datatypes.JSON(b)
}
