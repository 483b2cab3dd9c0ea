package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcuszucareli/house-price-app/internal/api"
	"github.com/marcuszucareli/house-price-app/internal/app"
)

func (s *Server) SetupRoutes(app *app.App) {
	// Health check endpoint
	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := s.ginEngine.Group("/api/v1")

	apiV1.GET("/countries", handlerWrapper(app, api.GetCountries))
	apiV1.GET("/cities", handlerWrapper(app, api.GetCities))
	apiV1.GET("/models", handlerWrapper(app, api.GetModels))
	apiV1.GET("/models/:id/inputs", handlerWrapper(app, api.GetInputs))
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.ginEngine
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
