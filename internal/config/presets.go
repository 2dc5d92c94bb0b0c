package config

import "sort"

func preset(edit func(s *Settings)) *Settings {
	s := DefaultSettings()
	edit(s)
	return s
}

var Presets = map[string]*Settings{
	"default": DefaultSettings(),
	"dense": preset(func(s *Settings) {
		s.ParticleCount = 1500
		s.ConnectionDistance = 8
		s.StrongDistance = 2
		s.TriangleOpacity = 0.15
	}),
	"sparse": preset(func(s *Settings) {
		s.ParticleCount = 120
		s.ConnectionDistance = 22
		s.StrongDistance = 8
		s.MinVelocity, s.MaxVelocity = 2, 6
	}),
	"web": preset(func(s *Settings) {
		s.ParticleCount = 300
		s.LineWidth = 0.6
		s.ShowTriangles = false
		s.Gradient = []string{"#2d0b3a", "#c0267d", "#ffd166"}
	}),
	"minimal": preset(func(s *Settings) {
		s.ShowTriangles = false
		s.ShowParticles = false
		s.Renderer = RendererBatch
		s.Gradient = []string{"#ffffff"}
	}),
	"aurora": preset(func(s *Settings) {
		s.ParticleCount = 600
		s.ShowBackground = true
		s.SquareBound = true
		s.BoundMargin = 4
		s.ColorCycleSpeed = 0.05
		s.Gradient = []string{"#03071e", "#1b998b", "#9bf6ff", "#caffbf"}
	}),
	"stress": preset(func(s *Settings) {
		s.ParticleCount = 5000
		s.ConnectionDistance = 6
		s.StrongDistance = 1
		s.MaxUnits = 256
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Settings {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
