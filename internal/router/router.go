package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Profile     *apiHandler.ProfileHandler
	Task        *apiHandler.TaskHandler
	Leaderboard *apiHandler.LeaderboardHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	// Auth routes
	v1.POST("/auth/signup", handlers.Auth.SignUp)
	v1.POST("/auth/signin", handlers.Auth.SignIn)
	v1.POST("/auth/signout", authMiddleware(handlers.Auth.SignOut))
	v1.POST("/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	v1.GET("/auth/me", authMiddleware(handlers.Auth.Me))

	// Protected routes
	v1.GET("/profile", authMiddleware(handlers.Profile.GetProfile))

	v1.GET("/tasks", authMiddleware(handlers.Task.ListTasks))
	v1.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	v1.PUT("/tasks/{id}", authMiddleware(handlers.Task.EditTask))
	v1.POST("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	v1.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	v1.GET("/leaderboard", authMiddleware(handlers.Leaderboard.GetLeaderboard))
	v1.GET("/leaderboard/snapshots", authMiddleware(handlers.Leaderboard.ListSnapshots))

	return r
}
