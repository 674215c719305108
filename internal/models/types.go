package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 类型定义，用于存储自由格式载荷
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，JSON 文本存储
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Contains 判断是否包含指定元素
func (s StringArray) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Int64Array 整型数组类型，JSON 文本存储
type Int64Array []int64

// Value 实现 driver.Valuer 接口
func (a Int64Array) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *Int64Array) Scan(value interface{}) error {
	if value == nil {
		*a = Int64Array{}
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Contains 判断是否包含指定元素
func (a Int64Array) Contains(v int64) bool {
	for _, item := range a {
		if item == v {
			return true
		}
	}
	return false
}

// WeekdaySet 星期集合（sun..sat 代码），空集合表示每天生效
type WeekdaySet []string

// Value 实现 driver.Valuer 接口
func (w WeekdaySet) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal([]string(w))
}

// Scan 实现 sql.Scanner 接口
func (w *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*w = WeekdaySet{}
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, w)
}

// Contains 判断星期代码是否在集合内
func (w WeekdaySet) Contains(code string) bool {
	for _, item := range w {
		if item == code {
			return true
		}
	}
	return false
}

// HourWindow 每日生效时段（HH:MM，可跨午夜），零值表示不限时段
type HourWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IsZero 判断是否未设置
func (h HourWindow) IsZero() bool {
	return h.From == "" && h.To == ""
}

// Value 实现 driver.Valuer 接口
func (h HourWindow) Value() (driver.Value, error) {
	if h.IsZero() {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan 实现 sql.Scanner 接口
func (h *HourWindow) Scan(value interface{}) error {
	if value == nil {
		*h = HourWindow{}
		return nil
	}
	bytes, ok := toBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, h)
}

func toBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
