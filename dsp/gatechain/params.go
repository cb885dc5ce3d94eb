package gatechain

import "math"

// Params holds the parsed parameters for a single chain node.
type Params struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Bypassed bool               `json:"bypassed,omitempty"`
	Num      map[string]float64 `json:"num,omitempty"`
	Str      map[string]string  `json:"str,omitempty"`
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetStr safely extracts a string parameter, returning def if missing or empty.
func (p Params) GetStr(key, def string) string {
	if p.Str == nil {
		return def
	}

	v, ok := p.Str[key]
	if !ok || v == "" {
		return def
	}

	return v
}

// GetBool extracts a boolean stored as a numeric parameter (non-zero is true).
func (p Params) GetBool(key string, def bool) bool {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) {
		return def
	}

	return v != 0
}
