// Package api assembles the HTTP surface: public read endpoints, the
// print pipeline, and the authenticated admin routes.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/api/handlers"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/api/middleware"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/storage"
)

type Deps struct {
	Queue     *core.FileQueueStore
	Registry  *core.PrinterRegistry
	Builder   *core.JobBuilder
	Scheduler *core.JobScheduler
	Documents *storage.DocumentStore
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	auth, err := middleware.NewAuthMiddleware()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "print management system", "status": "running"})
	})

	auth.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(auth.RequireAuth())

	files := handlers.NewFileHandler(deps.Queue, deps.Documents)
	files.RegisterRoutes(api)

	printers := handlers.NewPrinterHandler(deps.Registry)
	printers.RegisterRoutes(api, protected)

	jobs := handlers.NewJobHandler(deps.Builder, deps.Scheduler, deps.Queue)
	jobs.RegisterRoutes(api)

	settings := handlers.NewSettingsHandler()
	settings.RegisterRoutes(api, protected)

	webhooks := handlers.NewWebhookHandler()
	webhooks.RegisterRoutes(protected)

	return r, nil
}
