package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	service *service.TaskService
}

// NewTaskController creates a new TaskController.
func NewTaskController(svc *service.TaskService) *TaskController {
	return &TaskController{service: svc}
}

// GetTasks handles GET /tasks.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.service.ListTopLevel(r.Context(), requestUserID(r))
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID := requestUserID(r)
	if input.UserID == "" {
		input.UserID = userID
	}

	task, err := c.service.Create(r.Context(), input, userID)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	taskID := mux.Vars(r)["taskID"]
	task, err := c.service.Update(r.Context(), taskID, patch, requestUserID(r))
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if err := c.service.Delete(r.Context(), taskID, requestUserID(r)); err != nil {
		writeServiceError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchTasks handles GET /tasks/search.
func (c *TaskController) SearchTasks(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := c.service.Search(r.Context(), params, requestUserID(r))
	if err != nil {
		writeServiceError(w, "search tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetSubtasks handles GET /tasks/{taskID}/subtasks.
func (c *TaskController) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	subtasks, err := c.service.ListSubtasks(r.Context(), taskID, requestUserID(r))
	if err != nil {
		writeServiceError(w, "list subtasks", err)
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}

func parseSearchParams(r *http.Request) (model.SearchParams, error) {
	q := r.URL.Query()
	params := model.SearchParams{Query: q.Get("query")}

	if raw := q.Get("status"); raw != "" {
		status := model.TaskStatus(raw)
		if !status.Valid() {
			return params, errInvalidFilter("status", raw)
		}
		params.Status = &status
	}
	if raw := q.Get("priority"); raw != "" {
		priority := model.TaskPriority(raw)
		if !priority.Valid() {
			return params, errInvalidFilter("priority", raw)
		}
		params.Priority = &priority
	}
	if raw := q.Get("completed"); raw != "" {
		switch raw {
		case "true":
			completed := true
			params.Completed = &completed
		case "false":
			completed := false
			params.Completed = &completed
		default:
			return params, errInvalidFilter("completed", raw)
		}
	}
	if raw := q.Get("dueDate"); raw != "" {
		dueDate, err := parseDate(raw)
		if err != nil {
			return params, errInvalidFilter("dueDate", raw)
		}
		params.DueDate = &dueDate
	}

	return params, nil
}

// parseDate accepts full timestamps and bare dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

type filterError struct {
	field string
	value string
}

func errInvalidFilter(field, value string) error {
	return filterError{field: field, value: value}
}

func (e filterError) Error() string {
	return "invalid " + e.field + " filter: " + e.value
}
