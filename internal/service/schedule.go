package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/tezgo/ops-backend/internal/constants"
	"github.com/tezgo/ops-backend/internal/models"
)

// weekdayCode 返回 now 对应的周几编码（sun..sat）
func weekdayCode(now time.Time) string {
	return constants.WeekdayCodes[int(now.Weekday())]
}

// parseClockMinutes 解析 HH:MM 为当日分钟数，格式非法时 ok=false
func parseClockMinutes(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// campaignLiveAt 判断活动排期（星期集合 + 时段窗口）在 now 时刻是否生效。
// 空集合/空窗口不构成限制；窗口两端均为闭区间，from > to 表示跨午夜。
func campaignLiveAt(c *models.Campaign, now time.Time) bool {
	if len(c.ActiveDays) > 0 && !c.ActiveDays.Contains(weekdayCode(now)) {
		return false
	}
	if c.ActiveHours.IsZero() {
		return true
	}
	from, okFrom := parseClockMinutes(c.ActiveHours.From)
	to, okTo := parseClockMinutes(c.ActiveHours.To)
	if !okFrom || !okTo {
		// 非法时段配置不拦截活动
		return true
	}
	minute := now.Hour()*60 + now.Minute()
	if from <= to {
		return minute >= from && minute <= to
	}
	return minute >= from || minute <= to
}
