package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int64
		wantLimit int64
	}{
		{name: "absent", query: "", wantPage: 1, wantLimit: 20},
		{name: "valid", query: "page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "unparsable", query: "page=abc&limit=xyz", wantPage: 1, wantLimit: 20},
		{name: "negative", query: "page=-2&limit=-5", wantPage: 1, wantLimit: 20},
		{name: "zero", query: "page=0&limit=0", wantPage: 1, wantLimit: 20},
		{name: "limit clamped", query: "limit=5000", wantPage: 1, wantLimit: 100},
		{name: "float input", query: "page=1.5&limit=2.5", wantPage: 1, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			p := ParsePagination(q)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}
