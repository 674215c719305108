package service

import (
	"github.com/shopspring/decimal"

	"github.com/tezgo/ops-backend/internal/constants"
)

// percentOf 四舍五入计算 amount 的 percent%，金额为最小货币单位
func percentOf(amount int64, percent int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// discountedPrice 按折扣规则计算折后单价，结果不为负。
// 未知折扣类型视为无折扣。
func discountedPrice(basePrice int64, discountType string, value int64) int64 {
	var price int64
	switch discountType {
	case constants.DiscountTypePercent:
		if value <= 0 {
			return basePrice
		}
		if value >= 100 {
			return 0
		}
		price = percentOf(basePrice, 100-value)
	case constants.DiscountTypeFixed:
		price = basePrice - value
	case constants.DiscountTypeNewPrice:
		price = value
	default:
		return basePrice
	}
	if price < 0 {
		return 0
	}
	return price
}
