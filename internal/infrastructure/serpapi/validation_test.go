package serpapi

import (
	"strings"
	"testing"

	"seo-copilot/services/mcp-tools/internal/domain/serp"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *serp.Response
		wantErr string
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: "response is nil",
		},
		{
			name: "empty entries are valid",
			resp: &serp.Response{Query: "obscure", Entries: []serp.Entry{}},
		},
		{
			name: "well formed entries",
			resp: &serp.Response{Entries: []serp.Entry{
				{Position: 1, Title: "First"},
				{Position: 3, Title: "Third"},
				{Position: 7, Title: "Seventh"},
			}},
		},
		{
			name: "non-positive position",
			resp: &serp.Response{Entries: []serp.Entry{
				{Position: 0, Title: "Zero"},
			}},
			wantErr: "position must be 1-based",
		},
		{
			name: "duplicate position",
			resp: &serp.Response{Entries: []serp.Entry{
				{Position: 1, Title: "First"},
				{Position: 1, Title: "Also first"},
			}},
			wantErr: "strictly ascending",
		},
		{
			name: "descending positions",
			resp: &serp.Response{Entries: []serp.Entry{
				{Position: 2, Title: "Second"},
				{Position: 1, Title: "First"},
			}},
			wantErr: "strictly ascending",
		},
		{
			name: "blank title",
			resp: &serp.Response{Entries: []serp.Entry{
				{Position: 1, Title: "   "},
			}},
			wantErr: "title must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.resp)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid response, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateResponseCoercesNilEntries(t *testing.T) {
	resp := &serp.Response{Query: "anything"}

	if err := ValidateResponse(resp); err != nil {
		t.Fatalf("Expected nil entries to be coerced, got error: %v", err)
	}
	if resp.Entries == nil {
		t.Error("Expected entries to be coerced to an empty slice")
	}
}
