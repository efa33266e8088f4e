package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/drivenpend/internal/series"
)

type ExportData struct {
	Run    *RunMetadata  `json:"run"`
	Signal series.Series `json:"signal"`
	Noise  series.Series `json:"noise"`
}

// ExportJSON writes metadata and both sequences as one JSON document.
// Non-finite samples cannot be represented in JSON and make this fail.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	signal, noise, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Signal: signal, Noise: noise})
}
