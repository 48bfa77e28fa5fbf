package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultHouseholdSumsToOne(t *testing.T) {
	h := DefaultHousehold()
	sum := decimal.Zero
	for _, s := range h.Shares() {
		sum = sum.Add(s.Fraction)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("default shares sum to %s", sum)
	}
	got := h.Participants()
	if len(got) != 3 || got[0] != Bruno || got[1] != Joao || got[2] != Raissa {
		t.Fatalf("unexpected participants: %v", got)
	}
	if !h.Has(Joao) || h.Has("joao") {
		t.Fatalf("Has must match canonical names only")
	}
}

func TestParseHousehold(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "valid", raw: "Bruno=0.3642, joão=0.3642,raissa=0.2716"},
		{name: "empty", raw: "", wantErr: "at least one participant"},
		{name: "missing separator", raw: "bruno", wantErr: "expected name=fraction"},
		{name: "bad fraction", raw: "bruno=abc", wantErr: "invalid fraction"},
		{name: "duplicate", raw: "bruno=0.5,Bruno=0.5", wantErr: "duplicate participant"},
		{name: "sum below one", raw: "bruno=0.5,raissa=0.4", wantErr: "must sum to 1"},
		{name: "zero share", raw: "bruno=1,raissa=0", wantErr: "must be in (0, 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHousehold(tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if h.Participants()[0] != Bruno {
					t.Fatalf("names should be lowercased, got %v", h.Participants())
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
