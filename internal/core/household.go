package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Share is a participant's fixed fraction of the monthly spend.
type Share struct {
	Participant Participant
	Fraction    decimal.Decimal
}

// Household is the ordered, read-only set of participants and their shares.
type Household struct {
	shares []Share
}

// DefaultHousehold returns the split the household agreed on.
func DefaultHousehold() Household {
	return Household{shares: []Share{
		{Participant: Bruno, Fraction: decimal.RequireFromString("0.3642")},
		{Participant: Joao, Fraction: decimal.RequireFromString("0.3642")},
		{Participant: Raissa, Fraction: decimal.RequireFromString("0.2716")},
	}}
}

// NewHousehold validates shares: at least one participant, no duplicates,
// each fraction in (0, 1] and fractions summing to exactly 1.
func NewHousehold(shares []Share) (Household, error) {
	if len(shares) == 0 {
		return Household{}, errors.New("household needs at least one participant")
	}
	seen := map[Participant]struct{}{}
	sum := decimal.Zero
	for _, s := range shares {
		name := Participant(strings.TrimSpace(string(s.Participant)))
		if name == "" {
			return Household{}, errors.New("participant name cannot be empty")
		}
		if _, dup := seen[name]; dup {
			return Household{}, fmt.Errorf("duplicate participant %q", name)
		}
		seen[name] = struct{}{}
		if !s.Fraction.IsPositive() || s.Fraction.GreaterThan(decimal.NewFromInt(1)) {
			return Household{}, fmt.Errorf("share of %q must be in (0, 1], got %s", name, s.Fraction)
		}
		sum = sum.Add(s.Fraction)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return Household{}, fmt.Errorf("shares must sum to 1, got %s", sum)
	}
	out := make([]Share, len(shares))
	copy(out, shares)
	return Household{shares: out}, nil
}

// ParseHousehold reads "name=fraction,name=fraction" (e.g. from HOUSEHOLD_SHARES).
// Names are lowercased.
func ParseHousehold(raw string) (Household, error) {
	var shares []Share
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, frac, ok := strings.Cut(part, "=")
		if !ok {
			return Household{}, fmt.Errorf("invalid share %q: expected name=fraction", part)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(frac))
		if err != nil {
			return Household{}, fmt.Errorf("invalid fraction for %q: %w", name, err)
		}
		shares = append(shares, Share{
			Participant: Participant(strings.ToLower(strings.TrimSpace(name))),
			Fraction:    d,
		})
	}
	return NewHousehold(shares)
}

// Shares returns a copy of the shares in display order.
func (h Household) Shares() []Share {
	out := make([]Share, len(h.shares))
	copy(out, h.shares)
	return out
}

// Participants returns the participants in display order.
func (h Household) Participants() []Participant {
	out := make([]Participant, len(h.shares))
	for i, s := range h.shares {
		out[i] = s.Participant
	}
	return out
}

// Has reports whether p belongs to the household.
func (h Household) Has(p Participant) bool {
	for _, s := range h.shares {
		if s.Participant == p {
			return true
		}
	}
	return false
}
