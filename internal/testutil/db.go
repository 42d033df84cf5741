// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"taskhub/internal/repository"
)

// NewTaskRepository opens a throwaway SQLite database under t.TempDir with
// all migrations applied and returns a repository bound to it.
func NewTaskRepository(t *testing.T) *repository.TaskRepository {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "taskhub_test.db"))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return repository.NewTaskRepository(db)
}
