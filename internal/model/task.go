package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityNone   TaskPriority = "none"
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the flat persisted record. Parent and children are never stored
// on the row; they live in task_relationships and are derived on read.
type Task struct {
	ID          string       `gorm:"primaryKey" json:"id"`
	UserID      string       `gorm:"index" json:"userId"`
	Description string       `json:"description"`
	Completed   bool         `gorm:"default:false" json:"completed"`
	Status      TaskStatus   `gorm:"default:todo" json:"status"`
	Priority    TaskPriority `gorm:"default:none" json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskNode is the shape returned to callers: the persisted fields plus the
// parent and ordered child ids reconstructed from the relationship table.
type TaskNode struct {
	Task
	ParentID *string  `json:"parentId"`
	Children []string `json:"children"`
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	UserID      string       `json:"userId"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	ParentID    *string      `json:"parentId"`
}

// TaskPatch carries the fields a generic update may change. Ownership and
// hierarchy are deliberately not representable here; re-parenting goes
// through the move operation only.
type TaskPatch struct {
	Description *string       `json:"description"`
	Completed   *bool         `json:"completed"`
	Status      *TaskStatus   `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *time.Time    `json:"dueDate"`
}

// SearchParams are ANDed filters over a user's tasks. Zero-valued fields
// are ignored.
type SearchParams struct {
	Query     string
	Status    *TaskStatus
	Priority  *TaskPriority
	Completed *bool
	DueDate   *time.Time
}
