package handlers

import (
	"net/url"
	"strconv"
)

const (
	defaultPage  int64 = 1
	defaultLimit int64 = 20
	maxLimit     int64 = 100
)

type Pagination struct {
	Page  int64
	Limit int64
}

// ParsePagination reads page/limit from the query string. Absent,
// unparsable or non-positive values fall back to the defaults (page=1,
// limit=20); the contract never rejects pagination input. Limit is capped
// at 100 to bound result sizes.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && v >= 1 {
		p.Page = v
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && v >= 1 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// PageResponse is the uniform shape of paginated listings.
type PageResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int64       `json:"page"`
	Limit int64       `json:"limit"`
}
