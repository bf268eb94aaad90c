package util

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pagination is the page descriptor returned alongside list responses.
type Pagination struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	TotalPage int `json:"totalPage"`
}

const defaultPageLimit = 50

// Paginate reads page/limit from the query string, counts the rows matched
// by query, and returns the query with LIMIT/OFFSET applied plus the page
// descriptor. The count runs against the same filters as the page itself.
func Paginate(c *gin.Context, query *gorm.DB) (*gorm.DB, *Pagination, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	pagination := &Pagination{
		Page:      page,
		Limit:     limit,
		TotalPage: int(math.Ceil(float64(total) / float64(limit))),
	}

	return query.Session(&gorm.Session{}).Limit(limit).Offset(offset), pagination, nil
}
