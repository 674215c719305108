package repository

import "time"

// CampaignListFilter 查询活动列表的过滤条件
type CampaignListFilter struct {
	Page     int
	PageSize int
	OutletID uint
	Type     string
	Status   string
	Search   string
}

// CampaignUsageListFilter 查询活动使用台账的过滤条件
type CampaignUsageListFilter struct {
	Page       int
	PageSize   int
	CampaignID uint
}

// PromoCodeListFilter 查询全局优惠码列表的过滤条件
type PromoCodeListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// PromoIssueListFilter 查询个人优惠码列表的过滤条件
type PromoIssueListFilter struct {
	Page         int
	PageSize     int
	ClientUserID uint
	Status       string
}

// AuditLogListFilter 查询审计日志的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	EntityType  string
	EntityID    uint
	Action      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
