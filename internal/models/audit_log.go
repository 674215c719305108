package models

import "time"

// AuditLog 操作审计日志
// 说明：记录活动与计价相关的变更快照，支持按实体与时间范围检索。
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	EntityType string    `gorm:"type:varchar(64);index;not null" json:"entity_type"`
	EntityID   uint      `gorm:"index;not null" json:"entity_id"`
	Action     string    `gorm:"type:varchar(64);index;not null" json:"action"`
	ActorRole  string    `gorm:"type:varchar(32);not null;default:''" json:"actor_role"`
	ActorID    uint      `gorm:"index;not null;default:0" json:"actor_id"`
	Before     JSON      `gorm:"type:text" json:"before"`
	After      JSON      `gorm:"type:text" json:"after"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
