package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 全局优惠码
type PromoCode struct {
	ID              uint           `gorm:"primarykey" json:"id"`                           // 主键
	Code            string         `gorm:"uniqueIndex;not null" json:"code"`               // 优惠码
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`     // 折扣百分比
	MaxUses         int            `gorm:"not null;default:0" json:"max_uses"`             // 总使用上限（0 表示不限制）
	UsedCount       int            `gorm:"not null;default:0" json:"used_count"`           // 已使用次数
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`         // 是否启用
	StartsAt        *time.Time     `gorm:"index" json:"starts_at"`                         // 生效时间
	EndsAt          *time.Time     `gorm:"index" json:"ends_at"`                           // 失效时间
	MinOrderAmount  int64          `gorm:"not null;default:0" json:"min_order_amount"`     // 使用门槛（最小货币单位）
	OutletIDs       Int64Array     `gorm:"type:text" json:"outlet_ids"`                    // 适用门店集合（空=全部门店）
	FirstOrderOnly  bool           `gorm:"not null;default:false" json:"first_order_only"` // 仅限首单
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// PromoIssue 个人优惠码（绑定客户，优先于全局优惠码）
type PromoIssue struct {
	ID             uint           `gorm:"primarykey" json:"id"`                       // 主键
	Code           string         `gorm:"index;not null" json:"code"`                 // 优惠码
	ClientUserID   uint           `gorm:"index;not null" json:"client_user_id"`       // 客户ID
	Type           string         `gorm:"not null" json:"type"`                       // 类型（percent/fixed）
	Value          int64          `gorm:"not null;default:0" json:"value"`            // 数值（百分比或固定金额）
	MinOrderAmount int64          `gorm:"not null;default:0" json:"min_order_amount"` // 使用门槛（最小货币单位）
	Status         string         `gorm:"index;not null;default:active" json:"status"` // 状态（active/used/revoked）
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                    // 过期时间
	UsedOrderID    *uint          `gorm:"index" json:"used_order_id,omitempty"`       // 使用订单ID
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (PromoIssue) TableName() string {
	return "promo_issues"
}
