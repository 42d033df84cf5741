package model

import "time"

// TaskRelationship is a single parent→child edge. A task appears as child
// in at most one row; the auto-increment id preserves insertion order,
// which is the order children are reported in.
type TaskRelationship struct {
	ID           uint   `gorm:"primaryKey"`
	ParentTaskID string `gorm:"index"`
	ChildTaskID  string `gorm:"uniqueIndex"`
	CreatedAt    time.Time
}
