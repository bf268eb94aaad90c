package middleware

import (
	"log"
	"net/http"

	"github.com/ASMFahim71/ledgerly/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit persists an audit row for every mutating request made by an
// authenticated user. Reads are not recorded. Failures to write the audit
// row never fail the request itself.
func Audit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)

		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}

		user := CurrentUser(c)
		if user == nil {
			return
		}

		entry := models.AuditLog{
			RequestID: requestID,
			UserID:    user.ID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil {
			log.Printf("audit write failed: %s %s: %v", entry.Method, entry.Path, err)
		}
	}
}
