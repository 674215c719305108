package repository

import (
	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// OrderEventRepository 订单事件数据访问接口（追加写入）
type OrderEventRepository interface {
	Append(event *models.OrderEvent) error
	ListByOrder(orderID uint) ([]models.OrderEvent, error)
	WithTx(tx *gorm.DB) *GormOrderEventRepository
}

// GormOrderEventRepository GORM 实现
type GormOrderEventRepository struct {
	db *gorm.DB
}

// NewOrderEventRepository 创建订单事件仓库
func NewOrderEventRepository(db *gorm.DB) *GormOrderEventRepository {
	return &GormOrderEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderEventRepository) WithTx(tx *gorm.DB) *GormOrderEventRepository {
	if tx == nil {
		return r
	}
	return &GormOrderEventRepository{db: tx}
}

// Append 追加订单事件
func (r *GormOrderEventRepository) Append(event *models.OrderEvent) error {
	return r.db.Create(event).Error
}

// ListByOrder 按时间顺序获取订单事件
func (r *GormOrderEventRepository) ListByOrder(orderID uint) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	if err := r.db.Where("order_id = ?", orderID).Order("created_at asc, id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
