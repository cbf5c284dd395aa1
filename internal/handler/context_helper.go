package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func respond(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}
