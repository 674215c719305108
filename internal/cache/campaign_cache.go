package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
)

// CampaignCache 门店生效活动的短 TTL 缓存。
// 排期（星期/时段）过滤在读取侧按请求时刻执行，因此缓存键只按门店划分。
type CampaignCache struct {
	ttl time.Duration
}

// NewCampaignCache 创建活动缓存，ttlSeconds <= 0 时使用 30 秒
func NewCampaignCache(ttlSeconds int) *CampaignCache {
	ttl := 30 * time.Second
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &CampaignCache{ttl: ttl}
}

func campaignKey(outletID uint) string {
	return fmt.Sprintf("active_campaigns:%d", outletID)
}

// GetActive 读取门店生效活动缓存
func (c *CampaignCache) GetActive(outletID uint) ([]models.Campaign, bool) {
	if !Enabled() {
		return nil, false
	}
	var campaigns []models.Campaign
	found, err := GetJSON(context.Background(), campaignKey(outletID), &campaigns)
	if err != nil {
		logger.Warnw("campaign_cache_get_failed", "outlet_id", outletID, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return campaigns, true
}

// SetActive 写入门店生效活动缓存
func (c *CampaignCache) SetActive(outletID uint, campaigns []models.Campaign) {
	if !Enabled() {
		return
	}
	if err := SetJSON(context.Background(), campaignKey(outletID), campaigns, c.ttl); err != nil {
		logger.Warnw("campaign_cache_set_failed", "outlet_id", outletID, "error", err)
	}
}

// Invalidate 活动变更时删除门店缓存
func (c *CampaignCache) Invalidate(outletID uint) {
	if !Enabled() {
		return
	}
	if err := Del(context.Background(), campaignKey(outletID)); err != nil {
		logger.Warnw("campaign_cache_del_failed", "outlet_id", outletID, "error", err)
	}
}
