package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds limit/offset pagination inputs from controllers or services.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize returns a copy with the limit clamped and negative offsets reset.
func (p Params) Normalize() Params {
	p.Limit = NormalizeLimit(p.Limit)
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Parse reads raw limit/offset query values. Empty values fall back to defaults.
func Parse(rawLimit, rawOffset string) (Params, error) {
	var params Params
	if v := strings.TrimSpace(rawLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, fmt.Errorf("invalid limit %q", rawLimit)
		}
		params.Limit = limit
	}
	if v := strings.TrimSpace(rawOffset); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return Params{}, fmt.Errorf("invalid offset %q", rawOffset)
		}
		params.Offset = offset
	}
	return params.Normalize(), nil
}
