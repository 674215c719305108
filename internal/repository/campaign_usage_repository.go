package repository

import (
	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// CampaignUsageRepository 活动使用台账数据访问接口
type CampaignUsageRepository interface {
	Create(usage *models.CampaignUsage) error
	CountByCampaign(campaignID uint) (int64, error)
	CountByClient(campaignID uint, clientUserID uint) (int64, error)
	ListByOrderID(orderID uint) ([]models.CampaignUsage, error)
	ListByCampaign(filter CampaignUsageListFilter) ([]models.CampaignUsage, int64, error)
	DeleteByOrderID(orderID uint) error
	WithTx(tx *gorm.DB) *GormCampaignUsageRepository
}

// GormCampaignUsageRepository GORM 实现
type GormCampaignUsageRepository struct {
	db *gorm.DB
}

// NewCampaignUsageRepository 创建活动使用台账仓库
func NewCampaignUsageRepository(db *gorm.DB) *GormCampaignUsageRepository {
	return &GormCampaignUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignUsageRepository) WithTx(tx *gorm.DB) *GormCampaignUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignUsageRepository{db: tx}
}

// Create 追加台账记录
func (r *GormCampaignUsageRepository) Create(usage *models.CampaignUsage) error {
	return r.db.Create(usage).Error
}

// CountByCampaign 获取活动总使用次数
func (r *GormCampaignUsageRepository) CountByCampaign(campaignID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CampaignUsage{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClient 获取客户对某活动的使用次数
func (r *GormCampaignUsageRepository) CountByClient(campaignID uint, clientUserID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CampaignUsage{}).
		Where("campaign_id = ? AND client_user_id = ?", campaignID, clientUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByOrderID 获取订单对应的台账记录
func (r *GormCampaignUsageRepository) ListByOrderID(orderID uint) ([]models.CampaignUsage, error) {
	var usages []models.CampaignUsage
	if err := r.db.Where("order_id = ?", orderID).Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// ListByCampaign 获取活动的台账记录列表
func (r *GormCampaignUsageRepository) ListByCampaign(filter CampaignUsageListFilter) ([]models.CampaignUsage, int64, error) {
	query := r.db.Model(&models.CampaignUsage{}).Where("campaign_id = ?", filter.CampaignID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.CampaignUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// DeleteByOrderID 删除订单对应的台账记录（重算计价时整单替换）
func (r *GormCampaignUsageRepository) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.CampaignUsage{}).Error
}
