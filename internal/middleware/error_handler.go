package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicen_platform/pkg/errors"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			statusCode := errors.HTTPStatusFromError(err.Err)

			// Детали инфраструктурных сбоев наружу не отдаем
			message := err.Error()
			if statusCode == http.StatusInternalServerError {
				message = "internal server error"
			}

			c.JSON(statusCode, gin.H{
				"error": message,
			})
		}
	}
}
