package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/Aurelien-D/ToDoList-IA/api/handler"
)

type Handlers struct {
	Board   *apiHandler.BoardHandler
	Notices *apiHandler.NoticesHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/tasks", handlers.Board.ListTasks)
	r.POST("/api/v1/tasks", handlers.Board.CreateTask)
	r.PATCH("/api/v1/tasks/{id}", handlers.Board.EditTask)
	r.DELETE("/api/v1/tasks/{id}", handlers.Board.DeleteTask)
	r.POST("/api/v1/tasks/{id}/move", handlers.Board.MoveTask)
	r.POST("/api/v1/tasks/{id}/restore", handlers.Board.RestoreTask)
	r.POST("/api/v1/tasks/{id}/subtasks", handlers.Board.AddSubtask)
	r.DELETE("/api/v1/tasks/{id}/subtasks/{index}", handlers.Board.RemoveSubtask)
	r.POST("/api/v1/tasks/{id}/absorb", handlers.Board.Absorb)
	r.POST("/api/v1/tasks/{id}/ai/subtasks", handlers.Board.GenerateSubtasks)
	r.POST("/api/v1/tasks/{id}/ai/categorize", handlers.Board.SuggestCategory)

	r.GET("/api/v1/metrics", handlers.Board.Metrics)
	r.GET("/api/v1/notices", handlers.Notices.List)
	r.POST("/api/v1/reset", handlers.Board.Reset)

	return r
}
