package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID         string      `json:"id"`
	Source     string      `json:"source"`
	Delays     []int       `json:"delays"`
	Channels   []int       `json:"channels"`
	Ls         []float64   `json:"ls"`
	LInit      float64     `json:"l_init"`
	Stopped    string      `json:"stopped"`
	Trajectory [][]float64 `json:"trajectory"`
}

// ExportJSON writes a run and its trajectory as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, trajectory [][]float64) error {
	data := ExportData{
		ID:         meta.ID,
		Source:     meta.Source,
		Delays:     meta.Delays,
		Channels:   meta.Channels,
		Ls:         meta.Ls,
		LInit:      meta.LInit,
		Stopped:    meta.Stopped,
		Trajectory: trajectory,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSONStdout is ExportJSON to standard output.
func ExportJSONStdout(meta *RunMetadata, trajectory [][]float64) error {
	return ExportJSON(os.Stdout, meta, trajectory)
}
