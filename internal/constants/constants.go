package constants

// 营销活动类型常量
const (
	CampaignTypeDiscount = "discount"
	CampaignTypeBundle   = "bundle"
	CampaignTypeBogo     = "bogo"
)

// 营销活动状态常量
const (
	CampaignStatusDraft    = "draft"
	CampaignStatusActive   = "active"
	CampaignStatusPaused   = "paused"
	CampaignStatusExpired  = "expired"
	CampaignStatusArchived = "archived"
)

// 活动商品折扣类型常量
const (
	DiscountTypePercent  = "percent"
	DiscountTypeFixed    = "fixed"
	DiscountTypeNewPrice = "new_price"
)

// 配送方式常量
const (
	DeliveryMethodCourier = "courier"
	DeliveryMethodPickup  = "pickup"
)

// 停售商品处理策略常量
const (
	StoplistPolicyHide    = "hide"
	StoplistPolicyDisable = "disable"
)

// 个人优惠码类型常量
const (
	PromoIssueTypePercent = "percent"
	PromoIssueTypeFixed   = "fixed"
)

// 个人优惠码状态常量
const (
	PromoIssueStatusActive  = "active"
	PromoIssueStatusUsed    = "used"
	PromoIssueStatusRevoked = "revoked"
)

// 优惠来源常量
const (
	PromoSourceNone     = ""
	PromoSourcePersonal = "personal"
	PromoSourceGlobal   = "global"
)

// 订单状态常量（订单流程子系统负责写入，本服务只读）
const (
	OrderStatusNew           = "new"
	OrderStatusCourierSearch = "courier_search"
	OrderStatusAccepted      = "accepted"
	OrderStatusCooking       = "cooking"
	OrderStatusReady         = "ready"
	OrderStatusPickedUp      = "picked_up"
	OrderStatusDelivered     = "delivered"
	OrderStatusCancelled     = "cancelled"
)

// 订单事件类型常量
const (
	OrderEventCreated              = "created"
	OrderEventCourierSearchStarted = "courier_search_started"
	OrderEventCourierAssigned      = "courier_assigned"
	OrderEventAccepted             = "accepted"
	OrderEventCookingStarted       = "cooking_started"
	OrderEventReady                = "ready"
	OrderEventCourierArrivedOutlet = "courier_arrived_at_outlet"
	OrderEventCourierArrivedClient = "courier_arrived_at_client"
	OrderEventPickedUp             = "picked_up"
	OrderEventDelivered            = "delivered"
	OrderEventCancelled            = "cancelled"
	OrderEventNoteAdded            = "note_added"
	OrderEventCompensationIssued   = "compensation_issued"
	OrderEventCartUpdated          = "cart_updated"
	OrderEventNotifyClient         = "notify_client"
	OrderEventResendToRestaurant   = "resend_to_restaurant"
)

// 订单问题代码常量
const (
	ProblemCourierSearchDelayed = "COURIER_SEARCH_DELAYED"
	ProblemCookingDelayed       = "COOKING_DELAYED"
	ProblemReadyWaitingPickup   = "READY_WAITING_PICKUP"
	ProblemDeliveryDelayed      = "DELIVERY_DELAYED"
	ProblemCancelled            = "CANCELLED"
)

// 问题严重级别常量
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// 操作者角色常量（仅用于审计归属）
const (
	ActorRoleAdmin    = "admin"
	ActorRoleOperator = "operator"
	ActorRolePartner  = "partner"
	ActorRoleSystem   = "system"
)

// 审计实体类型常量
const (
	AuditEntityCampaign  = "campaign"
	AuditEntityOrder     = "order"
	AuditEntityPromoCode = "promo_code"
)

// 异步任务名称常量
const (
	TaskCampaignExpireSweep = "campaign:expire_sweep"
	TaskOrderEscalation     = "order:escalation_notify"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 星期代码，按 Sun..Sat 固定顺序
var WeekdayCodes = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}
