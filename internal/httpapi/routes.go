package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskhub/internal/auth"
)

// NewRouter sets up all routes for the application. Every route except the
// health check sits behind the bearer-auth middleware.
func NewRouter(authenticator auth.Authenticator, tasks *TaskController, googleCtl *GoogleController) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(RequireAuth(authenticator))

	// Search registers before the {taskID} routes so "search" is not
	// taken for a task id.
	api.HandleFunc("/tasks/search", tasks.SearchTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", tasks.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", tasks.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", tasks.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}", tasks.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/subtasks", tasks.GetSubtasks).Methods(http.MethodGet)

	api.HandleFunc("/calendar/events", googleCtl.GetCalendarEvents).Methods(http.MethodGet)
	api.HandleFunc("/gmail/messages", googleCtl.GetGmailMessages).Methods(http.MethodGet)

	return router
}
