package repository

import (
	"errors"

	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口（订单本体由订单流程子系统维护）
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	GetWithItems(id uint) (*models.Order, error)
	UpdatePricing(id uint, updates map[string]interface{}) error
	CountByClient(clientUserID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByID 根据ID获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetWithItems 根据ID获取订单及订单项
func (r *GormOrderRepository) GetWithItems(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdatePricing 回写订单计价结果
func (r *GormOrderRepository) UpdatePricing(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// CountByClient 统计客户历史订单数（首单优惠判定）
func (r *GormOrderRepository) CountByClient(clientUserID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("client_user_id = ?", clientUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
