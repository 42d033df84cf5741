package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/model"
)

// TaskRepository is the persistence adapter for the task and
// task_relationship relations. It surfaces storage errors verbatim and
// applies no business rules beyond the userId scoping its callers request.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Atomic runs fn against a repository bound to a single transaction.
// Any error from fn rolls the whole sequence back.
func (r *TaskRepository) Atomic(ctx context.Context, fn func(*TaskRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TaskRepository{db: tx})
	})
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByUser returns all of a user's tasks, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateFields applies a column patch to the task matching (id, userId) and
// returns the number of rows changed. updated_at is always refreshed.
func (r *TaskRepository) UpdateFields(ctx context.Context, userID, taskID string, fields map[string]interface{}) (int64, error) {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Search filters a user's tasks by an AND of the optional predicates.
func (r *TaskRepository) Search(ctx context.Context, userID string, params model.SearchParams) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if params.Query != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(params.Query)+"%")
	}
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if params.Priority != nil {
		q = q.Where("priority = ?", *params.Priority)
	}
	if params.Completed != nil {
		q = q.Where("completed = ?", *params.Completed)
	}
	if params.DueDate != nil {
		q = q.Where("due_date = ?", *params.DueDate)
	}

	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByParent returns the user's tasks that sit directly under parentID.
func (r *TaskRepository) ListByParent(ctx context.Context, userID, parentID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Joins("JOIN task_relationships ON task_relationships.child_task_id = tasks.id").
		Where("task_relationships.parent_task_id = ? AND tasks.user_id = ?", parentID, userID).
		Order("task_relationships.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListDueBefore returns a user's open tasks with a due date at or before
// the cutoff.
func (r *TaskRepository) ListDueBefore(ctx context.Context, userID string, cutoff time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND due_date IS NOT NULL AND due_date <= ?", userID, false, cutoff).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListUserIDs returns the distinct owners present in the task table.
func (r *TaskRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteByIDs removes the user's task rows whose ids are in the set.
func (r *TaskRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

// ListRelationships returns the full edge set in insertion order.
func (r *TaskRepository) ListRelationships(ctx context.Context) ([]model.TaskRelationship, error) {
	var rels []model.TaskRelationship
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

// ListRelationshipsTouching returns edges whose parent or child is in ids.
func (r *TaskRepository) ListRelationshipsTouching(ctx context.Context, ids []string) ([]model.TaskRelationship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rels []model.TaskRelationship
	if err := r.db.WithContext(ctx).
		Where("parent_task_id IN ? OR child_task_id IN ?", ids, ids).
		Order("id ASC").
		Find(&rels).Error; err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *TaskRepository) CreateRelationship(ctx context.Context, parentID, childID string) error {
	rel := model.TaskRelationship{ParentTaskID: parentID, ChildTaskID: childID}
	if err := r.db.WithContext(ctx).Create(&rel).Error; err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

// DeleteRelationshipsTouching removes every edge whose parent or child is
// in ids.
func (r *TaskRepository) DeleteRelationshipsTouching(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("parent_task_id IN ? OR child_task_id IN ?", ids, ids).
		Delete(&model.TaskRelationship{}).Error; err != nil {
		return fmt.Errorf("delete relationships: %w", err)
	}
	return nil
}

// DeleteChildRelationship removes the task's single incoming edge, if any.
func (r *TaskRepository) DeleteChildRelationship(ctx context.Context, childID string) error {
	if err := r.db.WithContext(ctx).Where("child_task_id = ?", childID).
		Delete(&model.TaskRelationship{}).Error; err != nil {
		return fmt.Errorf("delete child relationship: %w", err)
	}
	return nil
}
