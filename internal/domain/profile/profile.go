// Package profile defines the saved bundle of two raw exports, the weights
// they were scored with and the scored result.
package profile

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/okian/dkp/internal/domain/scoring"
)

// MaxNameLength bounds a profile name in runes.
const MaxNameLength = 64

// Profile is a named, stored computation.
type Profile struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	StartRaw string           `json:"-"`
	EndRaw   string           `json:"-"`
	Settings scoring.Config   `json:"settings"`
	Entities []scoring.Entity `json:"entities"`
	SavedAt  time.Time        `json:"saved_at"`
}

// Info is the listing view of a Profile.
type Info struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Entities int       `json:"entities"`
	SavedAt  time.Time `json:"saved_at"`
}

// New creates a profile with a fresh ID. The name is trimmed and validated.
func New(name, startRaw, endRaw string, settings scoring.Config, entities []scoring.Entity, now time.Time) (Profile, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:       uuid.NewString(),
		Name:     name,
		StartRaw: startRaw,
		EndRaw:   endRaw,
		Settings: settings,
		Entities: entities,
		SavedAt:  now.UTC(),
	}, nil
}

// Info summarises p for listings.
func (p Profile) Info() Info {
	return Info{ID: p.ID, Name: p.Name, Entities: len(p.Entities), SavedAt: p.SavedAt}
}

// NormalizeName trims name and rejects empty, overlong or control-character names.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", ErrInvalidName
	case utf8.RuneCountInString(name) > MaxNameLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return "", fmt.Errorf("%w: control characters", ErrInvalidName)
	}
	return name, nil
}
