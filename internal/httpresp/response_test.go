package httpresp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		limit     int
		wantPages int
	}{
		{name: "exact multiple", total: 20, page: 1, limit: 10, wantPages: 2},
		{name: "partial last page", total: 21, page: 3, limit: 10, wantPages: 3},
		{name: "empty listing", total: 0, page: 1, limit: 10, wantPages: 0},
		{name: "single under-full page", total: 3, page: 1, limit: 10, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.limit)
			require.Equal(t, tt.total, p.Total)
			require.Equal(t, tt.wantPages, p.Pages)
			require.Equal(t, tt.page, p.CurrentPage)
			require.Equal(t, tt.limit, p.Limit)
		})
	}
}
