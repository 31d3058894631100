package api

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/okian/dkp/internal/domain/scoring"
)

// flexNumber accepts a JSON number or a numeric string. Anything that does
// not parse reads as zero, matching how form inputs are scored.
type flexNumber struct {
	value float64
	set   bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexNumber{}
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			raw = ""
		}
	}
	f.value, f.set = scoring.ParseWeight(raw), true
	return nil
}

// settingsRequest carries optional weight overrides.
type settingsRequest struct {
	T4Mult        flexNumber `json:"t4_mult"`
	T5Mult        flexNumber `json:"t5_mult"`
	DeadsMult     flexNumber `json:"deads_mult"`
	TargetPercent flexNumber `json:"target_percent"`
}

// resolve overlays the supplied weights on def.
func (s *settingsRequest) resolve(def scoring.Config) scoring.Config {
	if s == nil {
		return def
	}
	pick := func(f flexNumber, d float64) float64 {
		if f.set {
			return f.value
		}
		return d
	}
	return scoring.Config{
		T4Mult:        pick(s.T4Mult, def.T4Mult),
		T5Mult:        pick(s.T5Mult, def.T5Mult),
		DeadsMult:     pick(s.DeadsMult, def.DeadsMult),
		TargetPercent: pick(s.TargetPercent, def.TargetPercent),
	}
}
