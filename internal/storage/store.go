package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/series"
	"github.com/san-kum/drivenpend/internal/sim"
)

const (
	metadataFile = "metadata.json"
	SignalFile   = "dati.txt"
	NoiseFile    = "rumore_base.txt"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Label      string             `json:"label,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Steps      int                `json:"steps"`
	Duration   float64            `json:"duration"`
	Gravity    float64            `json:"gravity"`
	Length     float64            `json:"length"`
	Dt         float64            `json:"dt"`
	Omega1     float64            `json:"omega1"`
	Terms      []forcing.Term     `json:"terms"`
	StepsTaken int                `json:"steps_taken"`
	Complete   bool               `json:"complete"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run's metadata and both sequences under a new run
// directory and returns its id.
func (s *Store) Save(label string, terms []forcing.Term, cfg dynamo.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      label,
		Timestamp:  now,
		Steps:      cfg.Steps,
		Duration:   cfg.Duration,
		Gravity:    cfg.Gravity,
		Length:     cfg.Length,
		Dt:         result.Dt,
		Omega1:     result.Omega1,
		Terms:      terms,
		StepsTaken: result.StepsTaken,
		Complete:   result.Complete,
		Metrics:    finiteMetrics(result.Metrics),
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := series.WriteFile(filepath.Join(runDir, SignalFile), result.Signal); err != nil {
		return "", err
	}
	if err := series.WriteFile(filepath.Join(runDir, NoiseFile), result.Noise); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads back the signal and noise sequences of a run.
func (s *Store) LoadSeries(runID string) (signal, noise series.Series, err error) {
	signal, err = series.ReadFile(filepath.Join(s.Dir(runID), SignalFile))
	if err != nil {
		return nil, nil, err
	}
	noise, err = series.ReadFile(filepath.Join(s.Dir(runID), NoiseFile))
	if err != nil {
		return nil, nil, err
	}
	return signal, noise, nil
}

// encoding/json rejects NaN and Inf, which a divergent run can produce.
func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if v == v && v <= 1e308 && v >= -1e308 {
			out[k] = v
		}
	}
	return out
}
