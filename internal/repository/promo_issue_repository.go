package repository

import (
	"errors"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// PromoIssueRepository 个人优惠码数据访问接口
type PromoIssueRepository interface {
	GetByID(id uint) (*models.PromoIssue, error)
	GetActiveByCodeAndClient(code string, clientUserID uint, now time.Time) (*models.PromoIssue, error)
	GetByUsedOrder(orderID uint) (*models.PromoIssue, error)
	Create(issue *models.PromoIssue) error
	UpdateStatus(id uint, status string, usedOrderID *uint) error
	List(filter PromoIssueListFilter) ([]models.PromoIssue, int64, error)
	WithTx(tx *gorm.DB) *GormPromoIssueRepository
}

// GormPromoIssueRepository GORM 实现
type GormPromoIssueRepository struct {
	db *gorm.DB
}

// NewPromoIssueRepository 创建个人优惠码仓库
func NewPromoIssueRepository(db *gorm.DB) *GormPromoIssueRepository {
	return &GormPromoIssueRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoIssueRepository) WithTx(tx *gorm.DB) *GormPromoIssueRepository {
	if tx == nil {
		return r
	}
	return &GormPromoIssueRepository{db: tx}
}

// GetByID 根据ID获取个人优惠码
func (r *GormPromoIssueRepository) GetByID(id uint) (*models.PromoIssue, error) {
	var issue models.PromoIssue
	if err := r.db.First(&issue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// GetActiveByCodeAndClient 获取客户名下可用的个人优惠码
func (r *GormPromoIssueRepository) GetActiveByCodeAndClient(code string, clientUserID uint, now time.Time) (*models.PromoIssue, error) {
	var issue models.PromoIssue
	query := r.db.Where("code = ? AND client_user_id = ? AND status = ?", code, clientUserID, constants.PromoIssueStatusActive)
	query = query.Where("(expires_at IS NULL OR expires_at >= ?)", now)
	if err := query.Order("id desc").First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// GetByUsedOrder 获取某订单核销过的个人优惠码
func (r *GormPromoIssueRepository) GetByUsedOrder(orderID uint) (*models.PromoIssue, error) {
	var issue models.PromoIssue
	if err := r.db.Where("used_order_id = ?", orderID).Order("id desc").First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// Create 创建个人优惠码
func (r *GormPromoIssueRepository) Create(issue *models.PromoIssue) error {
	return r.db.Create(issue).Error
}

// UpdateStatus 更新个人优惠码状态
func (r *GormPromoIssueRepository) UpdateStatus(id uint, status string, usedOrderID *uint) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if usedOrderID != nil {
		updates["used_order_id"] = *usedOrderID
	}
	return r.db.Model(&models.PromoIssue{}).Where("id = ?", id).Updates(updates).Error
}

// List 获取个人优惠码列表
func (r *GormPromoIssueRepository) List(filter PromoIssueListFilter) ([]models.PromoIssue, int64, error) {
	query := r.db.Model(&models.PromoIssue{})

	if filter.ClientUserID > 0 {
		query = query.Where("client_user_id = ?", filter.ClientUserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var issues []models.PromoIssue
	if err := query.Order("id desc").Find(&issues).Error; err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}
