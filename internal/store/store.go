// Package store persists analysis reports, one JSON file per analyzed file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/utils"
)

const ext = ".json"

var (
	ErrNotFound  = errors.New("report not found")
	ErrAmbiguous = errors.New("report id prefix is ambiguous")
)

// Record is one analyzed file and its outcome.
type Record struct {
	ID         string            `json:"id"`
	FileName   string            `json:"file_name"`
	FileType   string            `json:"file_type"`
	FileSize   int64             `json:"file_size"`
	UploadedAt time.Time         `json:"uploaded_at"`
	Analyzed   bool              `json:"analyzed"`
	Outcome    *analysis.Outcome `json:"outcome,omitempty"`
}

// Result returns the stored result bundle, or nil before analysis.
func (r *Record) Result() *analysis.AnalysisResult {
	if r == nil || r.Outcome == nil {
		return nil
	}
	return &r.Outcome.Result
}

// Store is a directory of report files.
type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string { return filepath.Join(s.dir, id+ext) }

// Save writes rec, assigning an id and upload time when missing.
func (s *Store) Save(rec *Record) error {
	if rec == nil {
		return errors.New("nil record")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return fmt.Errorf("invalid report id %q: %w", rec.ID, err)
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}
	rec.Analyzed = rec.Outcome != nil
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(rec)
	var unsupported *json.UnsupportedValueError
	if errors.As(err, &unsupported) {
		// Profiles of columns that overflowed can hold non-finite sums; the
		// result bundle never does.
		trimmed := *rec
		o := *rec.Outcome
		o.Profiles = nil
		trimmed.Outcome = &o
		data, err = utils.PrettyJSON(&trimmed)
	}
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path(rec.ID), data)
}

// Load reads the record with the given id or unique id prefix.
func (s *Store) Load(id string) (*Record, error) {
	full, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return s.read(s.path(full))
}

func (s *Store) read(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSuffix(filepath.Base(path), ext))
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

// List returns every record, newest upload first.
func (s *Store) List() ([]*Record, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.read(s.path(id))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// Delete removes the record with the given id or unique id prefix and
// returns its full id.
func (s *Store) Delete(id string) (string, error) {
	full, err := s.resolve(id)
	if err != nil {
		return "", err
	}
	if err := os.Remove(s.path(full)); err != nil {
		return "", fmt.Errorf("delete report: %w", err)
	}
	return full, nil
}

func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) resolve(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	ids, err := s.ids()
	if err != nil {
		return "", err
	}
	var match []string
	for _, cand := range ids {
		if cand == id {
			return cand, nil
		}
		if strings.HasPrefix(cand, id) {
			match = append(match, cand)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return match[0], nil
	}
	return "", fmt.Errorf("%w: %s matches %d reports", ErrAmbiguous, id, len(match))
}
