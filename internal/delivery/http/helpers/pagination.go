package helpers

import (
	"net/http"
	"strconv"

	"eventdesk/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageMeta carries pagination info alongside a listed collection. NextCursor
// is empty when there are no further pages.
// swagger:model PageMeta
type PageMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ParsePage reads the limit and cursor query parameters. A missing or
// non-positive limit falls back to the default; limits above the maximum are
// clamped. The cursor is passed through opaquely.
func ParsePage(r *http.Request) domain.Page {
	page := domain.Page{Limit: defaultPageLimit, Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			if n > maxPageLimit {
				n = maxPageLimit
			}
			page.Limit = int32(n)
		}
	}
	return page
}
