package store

import "sort"

type PresetSettings struct {
	Color       string `json:"color,omitempty"`
	Brightness  *int   `json:"brightness,omitempty"`
	Temperature *int   `json:"temperature,omitempty"`
}

// Preset maps device names to the settings applied to them.
type Preset map[string]PresetSettings

func (p Preset) Devices() []string {
	return sortedKeys(p)
}

type Presets map[string]Preset

func (p Presets) Names() []string {
	return sortedKeys(p)
}

// LoadPresets reads the presets file. A missing file yields no presets.
func LoadPresets(path string) (Presets, error) {
	presets := Presets{}
	if _, err := readJSON(path, &presets); err != nil {
		return Presets{}, err
	}
	return presets, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
