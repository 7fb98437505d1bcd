package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/export"
)

const (
	MetadataFile = "metadata.json"
	EnergiesFile = "energies.csv"
	runPrefix    = "oscillator"
)

var ErrRunNotFound = errors.New("store: run not found")

// Writer lays out one directory per run under baseDir. Nothing is written
// unless a caller asks for it.
type Writer struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

func (w *Writer) Init() error {
	return os.MkdirAll(w.baseDir, 0755)
}

func (w *Writer) Dir() string { return w.baseDir }

// NewRunID returns oscillator_<unix>_<first 8 hex digits of a uuid>.
func NewRunID(at time.Time) string {
	id := uuid.New().String()
	return fmt.Sprintf("%s_%d_%s", runPrefix, at.Unix(), id[:8])
}

// Save writes metadata.json and energies.csv for a finished run and returns
// the run id.
func (w *Writer) Save(cfg dynamo.Config, p dynamo.Params, result *dynamo.Result) (string, error) {
	if err := w.Init(); err != nil {
		return "", err
	}

	now := w.now()
	runID := NewRunID(now)
	runDir := filepath.Join(w.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := export.Metadata{
		ID:              runID,
		Timestamp:       now.UTC(),
		Params:          p,
		Strict:          cfg.Strict,
		RejectNonFinite: cfg.RejectNonFinite,
		Regime:          analysis.Characterize(p).Regime,
		Metrics:         export.FiniteMetrics(result.Metrics),
	}

	err := writeFile(filepath.Join(runDir, MetadataFile), func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}

	err = writeFile(filepath.Join(runDir, EnergiesFile), func(out io.Writer) error {
		return export.WriteCSV(out, result.Series)
	})
	if err != nil {
		return "", err
	}

	return runID, nil
}

// writeFile creates path and reports the Close error as well, since that is
// where a failed flush surfaces.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads back the metadata of a bundle written by Save.
func (w *Writer) Load(runID string) (*export.Metadata, error) {
	data, err := os.ReadFile(filepath.Join(w.baseDir, runID, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta export.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (w *Writer) LoadSeries(runID string) (dynamo.Series, error) {
	f, err := os.Open(filepath.Join(w.baseDir, runID, EnergiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return dynamo.Series{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return dynamo.Series{}, err
	}
	defer f.Close()

	return export.ReadCSV(f)
}
