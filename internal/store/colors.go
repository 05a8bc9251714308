package store

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type FavoriteColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type colorState struct {
	CurrentColors  map[string]string `json:"currentColors"`
	FavoriteColors []FavoriteColor   `json:"favoriteColors"`
}

func DefaultFavoriteColors() []FavoriteColor {
	return []FavoriteColor{
		{Name: "Warm White", Hex: "#FF8C00"},
		{Name: "Cool White", Hex: "#F5F5F5"},
		{Name: "Soft White", Hex: "#FFE4C4"},
		{Name: "Reading Light", Hex: "#FFF5E1"},
		{Name: "Night Light", Hex: "#FFB347"},
		{Name: "Relaxing", Hex: "#B19CD9"},
		{Name: "Focus", Hex: "#87CEEB"},
		{Name: "Energizing", Hex: "#98FB98"},
	}
}

// ColorStore keeps the last color set on each device and the favorite
// colors offered by the color menu. Every change rewrites the whole file.
type ColorStore struct {
	path  string
	mu    sync.RWMutex
	state colorState
}

func NewColorStore(path string) *ColorStore {
	return &ColorStore{
		path: path,
		state: colorState{
			CurrentColors:  map[string]string{},
			FavoriteColors: DefaultFavoriteColors(),
		},
	}
}

// Load reads the colors file. A missing file leaves the defaults in place.
func (s *ColorStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state colorState
	found, err := readJSON(s.path, &state)
	if err != nil {
		return err
	}
	if !found {
		log.Debug().Str("path", s.path).Msg("No colors file found, using defaults")
		return nil
	}

	if state.CurrentColors == nil {
		state.CurrentColors = map[string]string{}
	}
	if len(state.FavoriteColors) == 0 {
		state.FavoriteColors = DefaultFavoriteColors()
	}
	s.state = state
	return nil
}

func (s *ColorStore) CurrentColor(device string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hex, ok := s.state.CurrentColors[device]
	return hex, ok
}

func (s *ColorStore) SetCurrentColor(device, hex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentColors[device] = hex
	return writeJSON(s.path, s.state)
}

func (s *ColorStore) FavoriteColors() []FavoriteColor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]FavoriteColor(nil), s.state.FavoriteColors...)
}
