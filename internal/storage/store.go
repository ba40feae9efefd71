package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/takens/internal/embed"
)

// Store persists reconstruction runs under a base directory, one
// subdirectory per run: metadata.json, trajectory.csv and one
// continuity_cycleN.csv per attempted cycle.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Delays    []int     `json:"delays"`
	Channels  []int     `json:"channels"`
	Ls        []float64 `json:"ls"`
	LInit     float64   `json:"l_init"`
	Stopped   string    `json:"stopped"`
	Cycles    int       `json:"cycles"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

func (s *Store) Save(source string, opts embed.Options, res *embed.Result, elapsed time.Duration) (string, error) {
	runID := fmt.Sprintf("%s_%d", source, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Source:    source,
		Timestamp: time.Now(),
		Seed:      opts.Seed,
		Rows:      res.Trajectory.Len(),
		Columns:   res.Trajectory.Dims(),
		Delays:    res.Delays,
		Channels:  res.Channels,
		Ls:        res.Ls,
		LInit:     res.LInit,
		Stopped:   res.Stopped,
		Cycles:    len(res.Snapshots),
		ElapsedMS: elapsed.Milliseconds(),
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

	if err := writeMatrix(filepath.Join(runDir, "trajectory.csv"), trajectoryHeader(res), res.Trajectory); err != nil {
		return "", err
	}
	for i, snap := range res.Snapshots {
		path := filepath.Join(runDir, fmt.Sprintf("continuity_cycle%d.csv", i+1))
		if err := writeMatrix(path, snapshotHeader(snap), snap); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func trajectoryHeader(res *embed.Result) []string {
	header := make([]string, len(res.Delays))
	for i := range header {
		header[i] = fmt.Sprintf("ch%d_lag%d", res.Channels[i], res.Delays[i])
	}
	return header
}

func snapshotHeader(snap [][]float64) []string {
	if len(snap) == 0 {
		return nil
	}
	header := make([]string, len(snap[0]))
	for i := range header {
		header[i] = fmt.Sprintf("ch%d", i)
	}
	return header
}

func writeMatrix(path string, header []string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if header != nil {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads a saved trajectory back as a row-major matrix.
func (s *Store) LoadTrajectory(runID string) ([][]float64, error) {
	return readMatrix(filepath.Join(s.baseDir, runID, "trajectory.csv"))
}

// LoadSnapshot reads the continuity matrix of one attempted cycle,
// counted from 1.
func (s *Store) LoadSnapshot(runID string, cycle int) ([][]float64, error) {
	return readMatrix(filepath.Join(s.baseDir, runID, fmt.Sprintf("continuity_cycle%d.csv", cycle)))
}

func readMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		row := make([]float64, 0, len(rec))
		for _, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
