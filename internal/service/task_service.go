package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// TaskService implements the task hierarchy operations. Tasks are stored
// flat; every read reconstructs the tree from the relationship table, and
// every mutation that touches both relations runs in one transaction.
type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// ListTopLevel returns the user's tasks that have no parent, with their
// derived children populated.
func (s *TaskService) ListTopLevel(ctx context.Context, userID string) ([]model.TaskNode, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	rels, err := s.repo.ListRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	nodes := assembleNodes(tasks, rels)
	topLevel := make([]model.TaskNode, 0, len(tasks))
	for _, t := range tasks {
		if node := nodes[t.ID]; node.ParentID == nil {
			topLevel = append(topLevel, *node)
		}
	}
	return topLevel, nil
}

// Create inserts a task and, when a parent is named, its incoming edge, in
// one transaction: a failed relationship insert never leaves an orphaned
// task row behind.
func (s *TaskService) Create(ctx context.Context, input model.TaskInput, userID string) (*model.TaskNode, error) {
	if input.UserID != "" && input.UserID != userID {
		return nil, ErrOwnershipMismatch
	}
	if input.Status == "" {
		input.Status = model.StatusTodo
	}
	if input.Priority == "" {
		input.Priority = model.PriorityNone
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}

	task := model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: input.Description,
		Completed:   input.Completed,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	err := s.repo.Atomic(ctx, func(tx *repository.TaskRepository) error {
		if err := tx.Create(ctx, &task); err != nil {
			return err
		}
		if input.ParentID == nil {
			return nil
		}
		if _, err := tx.FindByID(ctx, userID, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParentNotFound
			}
			return fmt.Errorf("find parent: %w", err)
		}
		return tx.CreateRelationship(ctx, *input.ParentID, task.ID)
	})
	if err != nil {
		return nil, err
	}

	return &model.TaskNode{Task: task, ParentID: input.ParentID, Children: []string{}}, nil
}

// Update patches the task's own fields and refreshes updatedAt. It never
// mutates relationships; the returned node re-reads only the edges touching
// this task to derive parentId and children.
func (s *TaskService) Update(ctx context.Context, taskID string, patch model.TaskPatch, userID string) (*model.TaskNode, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *patch.Priority)
	}

	fields := map[string]interface{}{}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.DueDate != nil {
		fields["due_date"] = *patch.DueDate
	}

	var node *model.TaskNode
	err := s.repo.Atomic(ctx, func(tx *repository.TaskRepository) error {
		rows, err := tx.UpdateFields(ctx, userID, taskID, fields)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTaskNotFound
		}

		task, err := tx.FindByID(ctx, userID, taskID)
		if err != nil {
			return fmt.Errorf("reload task: %w", err)
		}

		rels, err := tx.ListRelationshipsTouching(ctx, []string{taskID})
		if err != nil {
			return fmt.Errorf("list relationships: %w", err)
		}

		node = &model.TaskNode{Task: *task, Children: []string{}}
		for _, rel := range rels {
			if rel.ChildTaskID == taskID && rel.ParentTaskID != "" {
				parentID := rel.ParentTaskID
				node.ParentID = &parentID
			}
			if rel.ParentTaskID == taskID {
				node.Children = append(node.Children, rel.ChildTaskID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Delete removes the task and its whole subtree: first every edge touching
// the set, then every task row in it, atomically. A missing or foreign root
// collects no descendants and the delete is a no-op, so repeated deletes
// are safe.
func (s *TaskService) Delete(ctx context.Context, taskID, userID string) error {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	rels, err := s.repo.ListRelationships(ctx)
	if err != nil {
		return fmt.Errorf("list relationships: %w", err)
	}

	owned := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		owned[t.ID] = true
	}
	if !owned[taskID] {
		// Already gone or not the caller's task: nothing to delete.
		return nil
	}

	doomed := append([]string{taskID}, collectDescendants(taskID, owned, rels)...)

	return s.repo.Atomic(ctx, func(tx *repository.TaskRepository) error {
		if err := tx.DeleteRelationshipsTouching(ctx, doomed); err != nil {
			return err
		}
		return tx.DeleteByIDs(ctx, userID, doomed)
	})
}

// Move replaces the task's single incoming edge. A nil newParentID detaches
// the task to top level. Moving a task under itself or any of its
// descendants is rejected before anything is written.
func (s *TaskService) Move(ctx context.Context, taskID string, newParentID *string, userID string) error {
	return s.repo.Atomic(ctx, func(tx *repository.TaskRepository) error {
		if _, err := tx.FindByID(ctx, userID, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		if newParentID != nil {
			if *newParentID == taskID {
				return ErrCyclicMove
			}
			if _, err := tx.FindByID(ctx, userID, *newParentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return fmt.Errorf("find parent: %w", err)
			}

			rels, err := tx.ListRelationships(ctx)
			if err != nil {
				return fmt.Errorf("list relationships: %w", err)
			}
			// Walk up from the proposed parent; if the task shows up on
			// the way to the root the move would close a cycle.
			parents := parentOf(rels)
			seen := map[string]bool{}
			for cur := *newParentID; cur != "" && !seen[cur]; {
				seen[cur] = true
				parent, ok := parents[cur]
				if !ok {
					break
				}
				if parent == taskID {
					return ErrCyclicMove
				}
				cur = parent
			}
		}

		if err := tx.DeleteChildRelationship(ctx, taskID); err != nil {
			return err
		}
		if newParentID != nil {
			return tx.CreateRelationship(ctx, *newParentID, taskID)
		}
		return nil
	})
}

// Search filters the user's tasks and derives parentId/children using only
// the edges touching the matched set; edges crossing out of the result set
// stay invisible.
func (s *TaskService) Search(ctx context.Context, params model.SearchParams, userID string) ([]model.TaskNode, error) {
	tasks, err := s.repo.Search(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	rels, err := s.repo.ListRelationshipsTouching(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	nodes := assembleNodes(tasks, rels)
	results := make([]model.TaskNode, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, *nodes[t.ID])
	}
	return results, nil
}

// ListSubtasks returns the direct children of parentID with their own
// children populated one level deep.
func (s *TaskService) ListSubtasks(ctx context.Context, parentID, userID string) ([]model.TaskNode, error) {
	subtasks, err := s.repo.ListByParent(ctx, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}

	ids := make([]string, len(subtasks))
	for i, t := range subtasks {
		ids[i] = t.ID
	}
	rels, err := s.repo.ListRelationshipsTouching(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}

	results := make([]model.TaskNode, 0, len(subtasks))
	for _, t := range subtasks {
		pid := parentID
		node := model.TaskNode{Task: t, ParentID: &pid, Children: []string{}}
		for _, rel := range rels {
			if rel.ParentTaskID == t.ID {
				node.Children = append(node.Children, rel.ChildTaskID)
			}
		}
		results = append(results, node)
	}
	return results, nil
}
