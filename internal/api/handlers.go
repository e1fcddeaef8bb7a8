package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"astroaspects/internal/chart"
	"astroaspects/internal/config"
	"astroaspects/internal/engine"
)

// Handler serves chart computations.
type Handler struct {
	engine   *engine.Engine
	defaults config.EngineConfig
}

// chartQuery holds the inclusion flags; unset fields fall back to the engine config.
type chartQuery struct {
	Draconic    *bool `form:"draconic"`
	Arabic      *bool `form:"arabic"`
	Asteroids   *bool `form:"asteroids"`
	Stars       *bool `form:"stars"`
	HouseSystem int   `form:"houseSystem"`
}

type selectorQuery struct {
	Point        int64  `form:"point"`
	Angle        string `form:"angle"`
	Part         string `form:"part"`
	DraconicName string `form:"draconicName"`
}

func (q selectorQuery) selector() engine.Selector {
	return engine.Selector{PointID: q.Point, AngleName: q.Angle, PartName: q.Part, DraconicName: q.DraconicName}
}

func pick(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func chartID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid chart id")
		return 0, false
	}
	return id, true
}

// request builds an engine request from the path id and query flags.
func (h *Handler) request(c *gin.Context, param string) (engine.Request, bool) {
	id, ok := chartID(c, param)
	if !ok {
		return engine.Request{}, false
	}
	var q chartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "invalid query parameters")
		return engine.Request{}, false
	}
	houseSystem := q.HouseSystem
	if houseSystem <= 0 {
		houseSystem = h.defaults.HouseSystemID
	}
	return engine.Request{
		ChartID:       id,
		HouseSystemID: houseSystem,
		Flags: chart.Flags{
			Draconic:  pick(q.Draconic, h.defaults.Draconic),
			Arabic:    pick(q.Arabic, h.defaults.Arabic),
			Asteroids: pick(q.Asteroids, h.defaults.Asteroids),
			Stars:     pick(q.Stars, h.defaults.Stars),
		},
	}, true
}

// GetChart handles GET /api/v1/charts/:id
func (h *Handler) GetChart(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	record, err := h.engine.Chart(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, record)
}

// GetListing handles GET /api/v1/charts/:id/listing
func (h *Handler) GetListing(c *gin.Context) {
	req, ok := h.request(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.ChartListing(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, entries)
}

// GetAngles handles GET /api/v1/charts/:id/angles
func (h *Handler) GetAngles(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.AngleListing(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, entries)
}

// GetDraconicAngles handles GET /api/v1/charts/:id/draconic/angles
func (h *Handler) GetDraconicAngles(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.DraconicAngleListing(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, entries)
}

// GetHouses handles GET /api/v1/charts/:id/houses
func (h *Handler) GetHouses(c *gin.Context) {
	req, ok := h.request(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.HouseListing(c.Request.Context(), req.ChartID, req.HouseSystemID)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, entries)
}

// GetDraconicHouses handles GET /api/v1/charts/:id/draconic/houses
func (h *Handler) GetDraconicHouses(c *gin.Context) {
	req, ok := h.request(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.DraconicHouseListing(c.Request.Context(), req.ChartID, req.HouseSystemID)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, entries)
}

// GetAspects handles GET /api/v1/charts/:id/aspects
func (h *Handler) GetAspects(c *gin.Context) {
	req, ok := h.request(c, "id")
	if !ok {
		return
	}
	var sel selectorQuery
	if err := c.ShouldBindQuery(&sel); err != nil {
		fail(c, http.StatusBadRequest, "invalid selector")
		return
	}
	groups, err := h.engine.Aspects(c.Request.Context(), req, sel.selector())
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, groups)
}

// GetExistence handles GET /api/v1/charts/:id/existence
func (h *Handler) GetExistence(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	report, err := h.engine.Existence(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, report)
}

// GetTransitCharts handles GET /api/v1/charts/:id/transits
func (h *Handler) GetTransitCharts(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	charts, err := h.engine.TransitCharts(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, charts)
}

// GetTransitAspects handles GET /api/v1/charts/:id/transits/:other/aspects
func (h *Handler) GetTransitAspects(c *gin.Context) {
	base, ok := h.request(c, "id")
	if !ok {
		return
	}
	over, ok := h.request(c, "other")
	if !ok {
		return
	}
	var sel selectorQuery
	if err := c.ShouldBindQuery(&sel); err != nil {
		fail(c, http.StatusBadRequest, "invalid selector")
		return
	}
	groups, err := h.engine.TransitAspects(c.Request.Context(), base, over, sel.selector())
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, groups)
}

// GetExport handles GET /api/v1/charts/:id/export
func (h *Handler) GetExport(c *gin.Context) {
	id, ok := chartID(c, "id")
	if !ok {
		return
	}
	bundle, err := h.engine.Bundle(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, chart.NewDocument(bundle))
}
