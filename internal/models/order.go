package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（订单流程子系统负责产生，本服务读取并回写计价结果）
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                             // 主键
	OutletID         uint           `gorm:"index;not null" json:"outlet_id"`                  // 门店ID
	ClientUserID     *uint          `gorm:"index" json:"client_user_id"`                      // 客户ID（可空）
	Status           string         `gorm:"index;not null" json:"status"`                     // 订单状态
	DeliveryMethod   string         `gorm:"not null;default:courier" json:"delivery_method"`  // 配送方式
	SubtotalFood     int64          `gorm:"not null;default:0" json:"subtotal_food"`          // 餐品小计
	CourierFee       int64          `gorm:"not null;default:0" json:"courier_fee"`            // 配送费
	ServiceFee       int64          `gorm:"not null;default:0" json:"service_fee"`            // 服务费
	PromoCode        string         `gorm:"type:varchar(64)" json:"promo_code"`               // 使用的优惠码
	PromoDiscount    int64          `gorm:"not null;default:0" json:"promo_discount"`         // 优惠码优惠金额
	CampaignDiscount int64          `gorm:"not null;default:0" json:"campaign_discount"`      // 活动优惠金额
	Total            int64          `gorm:"not null;default:0" json:"total"`                  // 实付金额
	PrepETAMinutes   int            `gorm:"not null;default:0" json:"prep_eta_minutes"`       // 预计出餐时长（分钟）
	SLADueAt         *time.Time     `gorm:"index" json:"sla_due_at"`                          // SLA 截止时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	AcceptedAt       *time.Time     `json:"accepted_at"`                                      // 接单时间
	ReadyAt          *time.Time     `json:"ready_at"`                                         // 出餐时间
	PickedUpAt       *time.Time     `json:"picked_up_at"`                                     // 取餐时间
	DeliveredAt      *time.Time     `json:"delivered_at"`                                     // 送达时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                          // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项表
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                    // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`          // 订单ID
	ItemID     uint           `gorm:"index;not null" json:"item_id"`           // 商品ID
	UnitPrice  int64          `gorm:"not null;default:0" json:"unit_price"`    // 单价
	Quantity   int            `gorm:"not null" json:"quantity"`                // 数量
	TotalPrice int64          `gorm:"not null;default:0" json:"total_price"`   // 小计
	CreatedAt  time.Time      `json:"created_at"`                              // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                              // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderEvent 订单事件日志（追加写入，按 created_at 排序）
type OrderEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`            // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`  // 订单ID
	Type      string    `gorm:"index;not null" json:"type"`      // 事件类型
	Payload   JSON      `gorm:"type:text" json:"payload"`        // 自由格式载荷
	ActorID   uint      `gorm:"not null;default:0" json:"actor_id"` // 操作者ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`         // 发生时间
}

// TableName 指定表名
func (OrderEvent) TableName() string {
	return "order_events"
}
