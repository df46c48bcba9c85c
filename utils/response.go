package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// RespondWithError writes the standard error envelope
func RespondWithError(c *gin.Context, status int, code, message string, details ...string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 && details[0] != "" {
		body["details"] = details[0]
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// RespondWithData writes the standard success envelope
func RespondWithData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes the page count for total rows
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// PageParams reads page and limit query parameters, clamped to sane bounds
func PageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page = queryInt(c, "page", 1)
	limit = queryInt(c, "limit", defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
