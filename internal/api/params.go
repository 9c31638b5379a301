package api

import (
	"fmt"     // Error formatting
	"strconv" // String conversion
	"time"    // Date parsing

	"wallet_ledger/internal/domain" // Domain errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pagination limits
const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// dateLayout is the calendar date accepted in query strings
const dateLayout = "2006-01-02"

// pageParams reads page and page_size, capping page_size at maxPageSize
func pageParams(c *gin.Context) (page, pageSize int, err error) {
	page, pageSize = defaultPage, defaultPageSize
	if p := c.Query("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil || page < 1 {
			return 0, 0, domain.ErrInvalidPage
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if pageSize, err = strconv.Atoi(ps); err != nil || pageSize < 1 {
			return 0, 0, domain.ErrInvalidPage
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize // Cap page size
	}
	return page, pageSize, nil
}

// dateParam reads an optional YYYY-MM-DD or RFC3339 query value. A bare date
// used as an upper bound covers the whole day.
func dateParam(c *gin.Context, name string, upper bool) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	if d, err := time.Parse(dateLayout, v); err == nil {
		if upper {
			d = d.Add(24*time.Hour - time.Microsecond)
		}
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD or RFC3339", name)
	}
	t = domain.LedgerTime(t)
	return &t, nil
}

// dateRange reads the from and to query values
func dateRange(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = dateParam(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = dateParam(c, "to", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// idParam reads a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return uint(id), nil
}
