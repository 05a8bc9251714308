package store

import (
	"sync"

	"github.com/wufe/govee-control/internal/govee"
)

// StateFile persists device state snapshots keyed by device name.
type StateFile struct {
	path string
	mu   sync.Mutex
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (f *StateFile) Path() string {
	return f.path
}

func (f *StateFile) Save(states map[string]govee.StateSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if states == nil {
		states = map[string]govee.StateSnapshot{}
	}
	return writeJSON(f.path, states)
}

func (f *StateFile) Load() (map[string]govee.StateSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := map[string]govee.StateSnapshot{}
	if _, err := readJSON(f.path, &states); err != nil {
		return nil, err
	}
	return states, nil
}
