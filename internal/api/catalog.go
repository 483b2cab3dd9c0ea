package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcuszucareli/house-price-app/internal/app"
)

// Whitelisted sort keys for the models endpoint. The values are order
// expressions, never user input.
var sortExpressions = map[string]string{
	"year": "data_year DESC",
	"mae":  "mae",
	"mape": "mape",
	"r2":   "r2 DESC",
	"rmse": "rmse",
}

func GetCountries(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	countries, err := app.PlaceRepository.ListCountries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

func GetCities(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	country := c.Query("country")
	if country == "all" {
		country = ""
	}

	cities, err := app.PlaceRepository.ListCitiesByCountry(c.Request.Context(), country)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

func GetModels(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	sortBy := c.DefaultQuery("sort_by", "year")
	orderBy, ok := sortExpressions[sortBy]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid sort_by parameter"})
		return
	}

	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "city parameter is required"})
		return
	}

	found, err := app.ModelRepository.ListByCity(c.Request.Context(), city, orderBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": found})
}

func GetInputs(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	modelID := c.Param("id")
	model, err := app.ModelRepository.GetByID(c.Request.Context(), modelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "model not found"})
		return
	}

	inputs, err := app.InputRepository.ListByModel(c.Request.Context(), model.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inputs": inputs})
}
