package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"astroaspects/internal/config"
	"astroaspects/internal/engine"
	"astroaspects/internal/logging"
	"astroaspects/internal/version"
)

// NewRouter wires the chart endpoints onto a gin engine.
func NewRouter(eng *engine.Engine, defaults config.EngineConfig, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(logging.Component(logger, "http")))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
	})

	h := &Handler{engine: eng, defaults: defaults}

	v1 := r.Group("/api/v1")
	{
		charts := v1.Group("/charts/:id")
		{
			charts.GET("", h.GetChart)
			charts.GET("/listing", h.GetListing)
			charts.GET("/angles", h.GetAngles)
			charts.GET("/houses", h.GetHouses)
			charts.GET("/draconic/angles", h.GetDraconicAngles)
			charts.GET("/draconic/houses", h.GetDraconicHouses)
			charts.GET("/aspects", h.GetAspects)
			charts.GET("/existence", h.GetExistence)
			charts.GET("/transits", h.GetTransitCharts)
			charts.GET("/transits/:other/aspects", h.GetTransitAspects)
			charts.GET("/export", h.GetExport)
		}
	}
	return r
}
