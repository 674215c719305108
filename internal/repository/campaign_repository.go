package repository

import (
	"errors"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// CampaignRepository 营销活动数据访问接口
type CampaignRepository interface {
	GetByID(id uint) (*models.Campaign, error)
	GetWithItems(id uint) (*models.Campaign, error)
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	ReplaceItems(campaignID uint, items []models.CampaignItem) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	List(filter CampaignListFilter) ([]models.Campaign, int64, error)
	ListActive(outletID uint, now time.Time) ([]models.Campaign, error)
	MarkExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCampaignRepository
}

// GormCampaignRepository GORM 实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动仓库
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// GetByID 根据ID获取活动
func (r *GormCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// GetWithItems 根据ID获取活动及其商品规则
func (r *GormCampaignRepository) GetWithItems(id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.Preload("Items").First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create 创建活动（连同商品规则）
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// Update 更新活动
func (r *GormCampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// ReplaceItems 重写活动商品规则
func (r *GormCampaignRepository) ReplaceItems(campaignID uint, items []models.CampaignItem) error {
	if err := r.db.Unscoped().Where("campaign_id = ?", campaignID).Delete(&models.CampaignItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].CampaignID = campaignID
	}
	return r.db.Create(&items).Error
}

// UpdateStatus 条件更新活动状态
func (r *GormCampaignRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).Updates(updates).Error
}

// List 获取活动列表
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.Campaign, int64, error) {
	var campaigns []models.Campaign
	query := r.db.Model(&models.Campaign{})

	if filter.OutletID > 0 {
		query = query.Where("outlet_id = ?", filter.OutletID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("priority desc, id desc").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ListActive 获取门店当前生效窗口内的活动（含商品规则），按优先级与新旧排序
func (r *GormCampaignRepository) ListActive(outletID uint, now time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	query := r.db.Where("outlet_id = ? AND status = ?", outletID, constants.CampaignStatusActive)
	query = query.Where("(start_at IS NULL OR start_at <= ?)", now)
	query = query.Where("(end_at IS NULL OR end_at >= ?)", now)
	if err := query.Preload("Items").Order("priority desc, created_at desc").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// MarkExpired 将失效时间已过的活动置为 expired，返回受影响行数
func (r *GormCampaignRepository) MarkExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Campaign{}).
		Where("status IN ?", []string{constants.CampaignStatusDraft, constants.CampaignStatusActive, constants.CampaignStatusPaused}).
		Where("end_at IS NOT NULL AND end_at < ?", now).
		Updates(map[string]interface{}{
			"status":     constants.CampaignStatusExpired,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
