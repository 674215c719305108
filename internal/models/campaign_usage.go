package models

import "time"

// CampaignUsage 活动使用台账（追加写入，用于统计使用次数）
type CampaignUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`               // 主键
	CampaignID     uint      `gorm:"index;not null" json:"campaign_id"`  // 活动ID
	OrderID        uint      `gorm:"index;not null" json:"order_id"`     // 订单ID
	ClientUserID   *uint     `gorm:"index" json:"client_user_id"`        // 客户ID（可空）
	DiscountAmount int64     `gorm:"not null;default:0" json:"discount_amount"` // 优惠金额
	AppliedAt      time.Time `gorm:"index" json:"applied_at"`            // 应用时间
}

// TableName 指定表名
func (CampaignUsage) TableName() string {
	return "campaign_usages"
}
