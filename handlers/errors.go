package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Controller is a request handler that leaves unexpected failures to
// CatchErrors.
type Controller func(c *gin.Context) error

// CatchErrors runs fn and turns a returned error into the JSON error shape.
// Validation failures answer 400, anything else 500.
func CatchErrors(name string, fn Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c)
		if err == nil {
			return
		}
		_ = c.Error(err)

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":    false,
				"result":     nil,
				"message":    "Required fields are not supplied",
				"controller": name,
				"error":      err.Error(),
			})
			return
		}

		zap.L().Error("controller failed", zap.String("controller", name), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"result":     nil,
			"message":    err.Error(),
			"controller": name,
			"error":      err.Error(),
		})
	}
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "Api url doesn't exist ",
	})
}

// Recovery answers 500 for a panicking handler. Outside dev the panic value is
// not echoed back.
func Recovery(env string, log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)

		if env == "dev" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": fmt.Sprint(recovered),
				"error":   fmt.Sprint(recovered),
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Oops ! Error in Server",
		})
	})
}
