package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/sim"
)

// Store keeps headless runs on disk, one directory per run holding
// metadata.json and frames.csv.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	Renderer  string             `json:"renderer"`
	Points    int                `json:"points"`
	Settings  *config.Settings   `json:"settings"`
	Metrics   map[string]float64 `json:"metrics"`
}

var frameHeader = []string{
	"tick", "time", "points", "lines", "triangles", "quads",
	"units", "active_units", "vertices", "dropped", "buckets", "peak_load",
}

func (s *Store) Save(preset string, settings *config.Settings, cfg sim.Config, result *sim.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", preset, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: ts,
		Seed:      settings.Seed,
		Dt:        cfg.Dt,
		Ticks:     cfg.Ticks,
		Renderer:  settings.Renderer,
		Points:    settings.ParticleCount,
		Settings:  settings,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFramesCSV(csvFile, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteFramesCSV writes one row per frame under a fixed header.
func WriteFramesCSV(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Tick),
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			strconv.Itoa(f.Points),
			strconv.Itoa(f.Lines),
			strconv.Itoa(f.Triangles),
			strconv.Itoa(f.Quads),
			strconv.Itoa(f.Units),
			strconv.Itoa(f.ActiveUnits),
			strconv.Itoa(f.Vertices),
			strconv.Itoa(f.Dropped),
			strconv.Itoa(f.Buckets),
			strconv.Itoa(f.PeakLoad),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		ints := make([]int, len(rec))
		for j := range rec {
			if j == 1 {
				continue
			}
			ints[j], _ = strconv.Atoi(rec[j])
		}
		frames = append(frames, sim.Frame{
			Tick:        ints[0],
			Time:        t,
			Points:      ints[2],
			Lines:       ints[3],
			Triangles:   ints[4],
			Quads:       ints[5],
			Units:       ints[6],
			ActiveUnits: ints[7],
			Vertices:    ints[8],
			Dropped:     ints[9],
			Buckets:     ints[10],
			PeakLoad:    ints[11],
		})
	}
	return frames, nil
}
