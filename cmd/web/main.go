package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"budgetgrid/internal/apiclient"
	"budgetgrid/internal/config"
	"budgetgrid/internal/handlers"
	"budgetgrid/internal/logger"
	"budgetgrid/internal/middleware"
	"budgetgrid/internal/validator"
	"budgetgrid/internal/web"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	client := apiclient.New(cfg.BackendURL, cfg.BackendTimeout)
	budgetHandler := handlers.NewBudgetHandler(client, cfg.PageSize)
	categoryHandler := handlers.NewCategoryHandler(client, client)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.SetHTMLTemplate(web.Templates())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/budgets")
	})

	budgets := router.Group("/budgets")
	budgets.GET("", budgetHandler.List)
	budgets.GET("/new", budgetHandler.NewForm)
	budgets.POST("", budgetHandler.Create)
	budgets.GET("/:id/edit", budgetHandler.EditForm)
	budgets.POST("/:id", budgetHandler.Update)
	budgets.POST("/:id/delete", budgetHandler.Delete)

	budgets.GET("/:id/table", categoryHandler.Table)
	budgets.POST("/:id/table/toggle", categoryHandler.Toggle)
	budgets.POST("/:id/table/expand-all", categoryHandler.ExpandAll)
	budgets.POST("/:id/table/collapse-all", categoryHandler.CollapseAll)
	budgets.POST("/:id/table/save", categoryHandler.Save)
	budgets.GET("/:id/categories/new", categoryHandler.NewForm)
	budgets.POST("/:id/categories", categoryHandler.Create)
	budgets.POST("/:id/categories/:cid/delete", categoryHandler.DeleteCategory)

	log.Infof("Starting budgetgrid on port %s, backend %s", cfg.Port, cfg.BackendURL)
	return router.Run(":" + cfg.Port)
}
