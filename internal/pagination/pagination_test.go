package pagination

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		wantPage int
		wantSize int
	}{
		{"empty", PageRequest{}, 1, DefaultPageSize},
		{"kept", PageRequest{Page: 3, PageSize: 50}, 3, 50},
		{"clamped", PageRequest{Page: 1, PageSize: 1000}, 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantSize {
				t.Errorf("got page=%d size=%d", req.Page, req.PageSize)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 2, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("data should never be nil")
	}

	mapped := Map(NewPageResponse([]int{1, 2}, 1, 2, 2), func(i int) string {
		return string(rune('a' + i - 1))
	})
	if mapped.Data[1] != "b" || mapped.TotalItems != 2 {
		t.Errorf("unexpected mapped page %+v", mapped)
	}
}
