package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astroaspects/internal/engine"
	"astroaspects/internal/storage"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// failErr maps engine and storage sentinels onto HTTP status codes.
func failErr(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrPointNotFound), errors.Is(err, storage.ErrChartNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
