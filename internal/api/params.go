package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// pathID parses a numeric path parameter. Anything else does not match a
// resource, so it is reported as not found.
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Resource", c.Param(name))
	}
	return uint(id), nil
}

// queryBool accepts "1" and "true" as true.
func queryBool(c *gin.Context, name string) bool {
	v := strings.ToLower(c.Query(name))
	return v == "1" || v == "true"
}

// queryUint returns 0 when the parameter is absent.
func queryUint(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, models.NewFieldError(name, "must be a positive integer")
	}
	return uint(v), nil
}

// queryNonNegative returns def when the parameter is absent.
func queryNonNegative(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, models.NewFieldError(name, "must be a non-negative integer")
	}
	return v, nil
}

// pageRequest is the page/limit pair of a paginated listing.
type pageRequest struct {
	Page  int
	Limit int
}

func (p pageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePage reads page and limit; limit defaults to defaultSize and is
// capped at cfg.MaxPageSize.
func parsePage(c *gin.Context, cfg config.PaginationConfig, defaultSize int) (pageRequest, error) {
	p := pageRequest{Page: 1, Limit: defaultSize}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, &models.AppError{Kind: models.KindNotFound, Message: "invalid page"}
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 {
			p.Limit = limit
		}
	}
	if cfg.MaxPageSize > 0 && p.Limit > cfg.MaxPageSize {
		p.Limit = cfg.MaxPageSize
	}
	return p, nil
}

// newPage wraps results in the pagination envelope. A page past the end
// other than the first is not found.
func newPage[T any](c *gin.Context, p pageRequest, results []T, total int64) (*types.Page[T], error) {
	if p.Page > 1 && len(results) == 0 {
		return nil, &models.AppError{Kind: models.KindNotFound, Message: "invalid page"}
	}
	if results == nil {
		results = []T{}
	}

	page := &types.Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		next := pageURL(c, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(c, p.Page-1)
		page.Previous = &previous
	}
	return page, nil
}

// pageURL is the absolute URL of the current request pointing at page.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
