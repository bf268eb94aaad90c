package util

import (
	"log"
	"net/http"

	"github.com/ASMFahim71/ledgerly/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of the fixed wire envelope
// { status, data?, message?, results?, pagination? }.
type Response map[string]interface{}

// Success writes a 200 envelope with data.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   data,
	})
}

// Created writes a 201 envelope with a message and optional data.
func Created(c *gin.Context, message string, data Response) {
	body := gin.H{
		"status":  true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusCreated, body)
}

// Message writes a 200 envelope carrying only a message (deletes, logout).
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": message,
	})
}

// List writes a 200 envelope for paginated collections. results is the
// number of items in this page, not the total.
func List(c *gin.Context, results int, data Response, pagination *Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"status":     true,
		"results":    results,
		"data":       data,
		"pagination": pagination,
	})
}

// Fail maps an error to its HTTP status and writes the failure envelope.
// Non-operational errors are logged and, outside debug mode, masked with a
// generic message so internals never leak to clients.
func Fail(c *gin.Context, err error) {
	e := apperr.From(err)

	if !e.Operational() {
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		if gin.Mode() != gin.DebugMode {
			c.AbortWithStatusJSON(e.Status(), gin.H{
				"status":  false,
				"message": "Something went wrong!",
			})
			return
		}
	}

	body := gin.H{
		"status":  false,
		"message": e.Message,
	}
	// validation failures answer with the field -> message map
	if len(e.Fields) > 0 {
		body["message"] = e.Fields
	}
	c.AbortWithStatusJSON(e.Status(), body)
}
