package models

import (
	"time"

	"gorm.io/gorm"
)

// OutletItem 门店商品基准价（活动规则校验与计价的价格来源）
type OutletItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`               // 主键
	OutletID  uint           `gorm:"index;not null" json:"outlet_id"`    // 门店ID
	ItemID    uint           `gorm:"index;not null" json:"item_id"`      // 商品ID
	Name      string         `gorm:"not null" json:"name"`               // 商品名称
	Price     int64          `gorm:"not null;default:0" json:"price"`    // 基准价（最小货币单位）
	Stoplisted bool          `gorm:"not null;default:false" json:"stoplisted"` // 是否停售
	CreatedAt time.Time      `json:"created_at"`                         // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                         // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间
}

// TableName 指定表名
func (OutletItem) TableName() string {
	return "outlet_items"
}
