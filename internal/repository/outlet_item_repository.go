package repository

import (
	"errors"

	"github.com/tezgo/ops-backend/internal/models"

	"gorm.io/gorm"
)

// OutletItemRepository 门店商品数据访问接口
type OutletItemRepository interface {
	Get(outletID, itemID uint) (*models.OutletItem, error)
	PriceMap(outletID uint, itemIDs []uint) (map[uint]int64, error)
	ListByOutlet(outletID uint) ([]models.OutletItem, error)
	Create(item *models.OutletItem) error
	WithTx(tx *gorm.DB) *GormOutletItemRepository
}

// GormOutletItemRepository GORM 实现
type GormOutletItemRepository struct {
	db *gorm.DB
}

// NewOutletItemRepository 创建门店商品仓库
func NewOutletItemRepository(db *gorm.DB) *GormOutletItemRepository {
	return &GormOutletItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOutletItemRepository) WithTx(tx *gorm.DB) *GormOutletItemRepository {
	if tx == nil {
		return r
	}
	return &GormOutletItemRepository{db: tx}
}

// Get 获取门店商品
func (r *GormOutletItemRepository) Get(outletID, itemID uint) (*models.OutletItem, error) {
	var item models.OutletItem
	if err := r.db.Where("outlet_id = ? AND item_id = ?", outletID, itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// PriceMap 批量获取门店商品基准价，键为商品ID；未配置价格的商品不出现在结果中
func (r *GormOutletItemRepository) PriceMap(outletID uint, itemIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}
	var items []models.OutletItem
	if err := r.db.Where("outlet_id = ? AND item_id IN ?", outletID, itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.ItemID] = item.Price
	}
	return result, nil
}

// ListByOutlet 获取门店商品列表
func (r *GormOutletItemRepository) ListByOutlet(outletID uint) ([]models.OutletItem, error) {
	var items []models.OutletItem
	if err := r.db.Where("outlet_id = ?", outletID).Order("item_id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建门店商品
func (r *GormOutletItemRepository) Create(item *models.OutletItem) error {
	return r.db.Create(item).Error
}
