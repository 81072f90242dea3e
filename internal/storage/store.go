// Package storage persists finished runs. Each run gets a directory holding
// metadata.json and a states.csv time series; a SQLite index (runs.db) keeps
// the listing queryable without scanning the tree.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/san-kum/swarmlab/internal/sim"
)

type Store struct {
	baseDir string
	db      *sqlx.DB
}

// RunMeta describes one stored run. Metrics holds the run-averaged order
// parameters.
type RunMeta struct {
	ID        string             `json:"id" db:"id"`
	Label     string             `json:"label" db:"label"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	Agents    int                `json:"agents" db:"agents"`
	Dt        float64            `json:"dt" db:"dt"`
	Duration  float64            `json:"duration" db:"duration"`
	Seed      int64              `json:"seed" db:"seed"`
	K         float64            `json:"k" db:"k"`
	J         float64            `json:"j" db:"j"`
	Steps     int                `json:"steps" db:"steps"`
	Metrics   map[string]float64 `json:"metrics" db:"-"`

	MetricsJSON string `json:"-" db:"metrics_json"`
}

// Series is a run's sampled time series read back from disk. States rows are
// interleaved per agent as (x, y, theta).
type Series struct {
	Times     []float64
	Coherence []float64
	SPlus     []float64
	SMinus    []float64
	States    [][]float64
}

// Open prepares the base directory and the run index.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", filepath.Join(baseDir, "runs.db")+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}

	s := &Store{baseDir: baseDir, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate run index: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		agents INTEGER NOT NULL,
		dt REAL NOT NULL,
		duration REAL NOT NULL,
		seed INTEGER NOT NULL,
		k REAL NOT NULL,
		j REAL NOT NULL,
		steps INTEGER NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save writes the run directory and indexes it, returning the new run ID.
func (s *Store) Save(meta RunMeta, result *sim.Result) (string, error) {
	meta.ID = uuid.NewString()
	meta.CreatedAt = time.Now().UTC()
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}

	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", err
	}
	meta.MetricsJSON = string(metricsJSON)

	_, err = s.db.NamedExec(`
		INSERT INTO runs (id, label, created_at, agents, dt, duration, seed, k, j, steps, metrics_json)
		VALUES (:id, :label, :created_at, :agents, :dt, :duration, :seed, :k, :j, :steps, :metrics_json)`,
		meta)
	if err != nil {
		return "", fmt.Errorf("index run: %w", err)
	}

	return meta.ID, nil
}

// List returns all runs, newest first.
func (s *Store) List() ([]RunMeta, error) {
	var runs []RunMeta
	err := s.db.Select(&runs, `SELECT * FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Metrics = decodeMetrics(runs[i].MetricsJSON)
	}
	return runs, nil
}

// Load returns one run's metadata.
func (s *Store) Load(runID string) (*RunMeta, error) {
	var meta RunMeta
	if err := s.db.Get(&meta, `SELECT * FROM runs WHERE id = ?`, runID); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	meta.Metrics = decodeMetrics(meta.MetricsJSON)
	return &meta, nil
}

// Delete removes a run from the index and from disk.
func (s *Store) Delete(runID string) error {
	if _, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

// LoadSeries reads a run's sampled time series back from its CSV.
func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &Series{}, nil
	}

	series := &Series{
		Times:     make([]float64, 0, len(records)-1),
		Coherence: make([]float64, 0, len(records)-1),
		SPlus:     make([]float64, 0, len(records)-1),
		SMinus:    make([]float64, 0, len(records)-1),
		States:    make([][]float64, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		row := make([]float64, len(record))
		bad := false
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				bad = true
				break
			}
			row[i] = v
		}
		if bad {
			continue
		}

		series.Times = append(series.Times, row[0])
		series.Coherence = append(series.Coherence, row[1])
		series.SPlus = append(series.SPlus, row[2])
		series.SMinus = append(series.SMinus, row[3])
		series.States = append(series.States, row[4:])
	}

	return series, nil
}

func writeMetadata(path string, meta RunMeta) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(result.Snapshots) == 0 {
		return nil
	}

	agents := len(result.Snapshots[0].Phases)
	header := []string{"t", "coherence", "s_plus", "s_minus"}
	for i := 0; i < agents; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("theta%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, snap := range result.Snapshots {
		row = row[:0]
		row = append(row,
			formatFloat(snap.T),
			formatFloat(snap.Coherence),
			formatFloat(snap.SPlus),
			formatFloat(snap.SMinus),
		)
		for i := 0; i < agents; i++ {
			row = append(row,
				formatFloat(snap.Positions[i*2]),
				formatFloat(snap.Positions[i*2+1]),
				formatFloat(snap.Phases[i]),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 9, 64)
}

func decodeMetrics(raw string) map[string]float64 {
	m := make(map[string]float64)
	if raw != "" {
		// Best effort: a corrupt metrics blob should not hide the run.
		_ = json.Unmarshal([]byte(raw), &m)
	}
	return m
}
