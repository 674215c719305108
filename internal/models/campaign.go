package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign 营销活动
type Campaign struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OutletID              uint           `gorm:"index;not null" json:"outlet_id"`                               // 门店ID
	Type                  string         `gorm:"not null" json:"type"`                                          // 类型（discount/bundle/bogo）
	Title                 string         `gorm:"not null" json:"title"`                                         // 标题
	Description           string         `gorm:"type:text" json:"description"`                                  // 描述
	Priority              int            `gorm:"not null;default:0" json:"priority"`                            // 优先级（冲突时大者优先）
	Status                string         `gorm:"index;not null;default:draft" json:"status"`                    // 状态（draft/active/paused/expired/archived）
	StartAt               *time.Time     `gorm:"index" json:"start_at"`                                         // 生效时间
	EndAt                 *time.Time     `gorm:"index" json:"end_at"`                                           // 失效时间
	ActiveDays            WeekdaySet     `gorm:"type:text" json:"active_days"`                                  // 生效星期集合（空=每天）
	ActiveHours           HourWindow     `gorm:"type:text" json:"active_hours"`                                 // 每日生效时段（可跨午夜）
	MinOrderAmount        int64          `gorm:"not null;default:0" json:"min_order_amount"`                    // 使用门槛（最小货币单位）
	MaxUsesTotal          int            `gorm:"not null;default:0" json:"max_uses_total"`                      // 总使用上限（0 表示不限制）
	MaxUsesPerClient      int            `gorm:"not null;default:0" json:"max_uses_per_client"`                 // 每客户使用上限（0 表示不限制）
	DeliveryMethods       StringArray    `gorm:"type:text" json:"delivery_methods"`                             // 适用配送方式（courier/pickup）
	StoplistPolicy        string         `gorm:"not null;default:hide" json:"stoplist_policy"`                  // 停售策略（hide/disable）
	BundleFixedPrice      *int64         `json:"bundle_fixed_price,omitempty"`                                  // 套餐固定价（仅 bundle）
	BundlePercentDiscount *int64         `json:"bundle_percent_discount,omitempty"`                             // 套餐百分比折扣（仅 bundle）
	CreatedByRole         string         `gorm:"type:varchar(32);not null;default:''" json:"created_by_role"`   // 创建者角色
	CreatedByID           uint           `gorm:"not null;default:0" json:"created_by_id"`                       // 创建者ID
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	ArchivedAt            *time.Time     `gorm:"index" json:"archived_at"`                                      // 归档时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []CampaignItem `gorm:"foreignKey:CampaignID" json:"items,omitempty"` // 活动商品规则
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignItem 活动商品规则
type CampaignItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                         // 主键
	CampaignID    uint           `gorm:"index;not null" json:"campaign_id"`            // 活动ID
	ItemID        uint           `gorm:"index;not null" json:"item_id"`                // 商品ID
	Qty           int            `gorm:"not null;default:1" json:"qty"`                // 需要的最小数量
	Required      bool           `gorm:"not null;default:false" json:"required"`       // 套餐必选项
	DiscountType  string         `gorm:"not null" json:"discount_type"`                // 折扣类型（percent/fixed/new_price）
	DiscountValue int64          `gorm:"not null;default:0" json:"discount_value"`     // 折扣数值
	CreatedAt     time.Time      `json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (CampaignItem) TableName() string {
	return "campaign_items"
}
