package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

func outcome(t *testing.T, vals ...float64) *analysis.Outcome {
	t.Helper()
	rs := &analysis.RecordSet{Columns: []string{"revenue", "region"}}
	for i, v := range vals {
		region := "A"
		if i%2 == 1 {
			region = "B"
		}
		rs.Rows = append(rs.Rows, analysis.Row{"revenue": v, "region": region})
	}
	out, err := analysis.New().Analyze(context.Background(), analysis.Input{FileType: "csv", Records: rs})
	require.NoError(t, err)
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "reports"))
	rec := &Record{FileName: "sales.csv", FileType: "csv", FileSize: 42, Outcome: outcome(t, 100, 200, 300)}
	require.NoError(t, s.Save(rec))

	_, err := uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.True(t, rec.Analyzed)
	assert.False(t, rec.UploadedAt.IsZero())

	got, err := s.Load(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.FileName, got.FileName)
	assert.Equal(t, rec.Result(), got.Result())
	require.Len(t, got.Outcome.Profiles, 1)
	assert.Nil(t, got.Outcome.Profiles[0].Dataset)
	assert.Equal(t, 3, got.Outcome.Profiles[0].Profile.Rows)

	// the fallback answer only needs what was persisted
	assert.Equal(t, analysis.FallbackAnswer(rec.Outcome, "kpi"), analysis.FallbackAnswer(got.Outcome, "kpi"))
}

func TestLoadByPrefix(t *testing.T) {
	s := New(t.TempDir())
	a := &Record{ID: "aaaa1111-0000-4000-8000-000000000001", FileName: "a.csv"}
	b := &Record{ID: "aaaa2222-0000-4000-8000-000000000002", FileName: "b.csv"}
	require.NoError(t, s.Save(a))
	require.NoError(t, s.Save(b))

	got, err := s.Load("aaaa2")
	require.NoError(t, err)
	assert.Equal(t, "b.csv", got.FileName)
	assert.False(t, got.Analyzed)
	assert.Nil(t, got.Result())

	_, err = s.Load("aaaa")
	assert.ErrorIs(t, err, ErrAmbiguous)
	_, err = s.Load("ffff")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"old.csv", "new.csv", "mid.csv"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		require.NoError(t, s.Save(&Record{FileName: name, UploadedAt: base.Add(offsets[i])}))
	}
	// stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "not-a-uuid.json"), []byte("{}"), 0o644))

	recs, err := s.List()
	require.NoError(t, err)
	var names []string
	for _, r := range recs {
		names = append(names, r.FileName)
	}
	assert.Equal(t, []string{"new.csv", "mid.csv", "old.csv"}, names)
}

func TestListMissingDir(t *testing.T) {
	recs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir())
	rec := &Record{FileName: "x.csv"}
	require.NoError(t, s.Save(rec))

	id, err := s.Delete(rec.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, rec.ID, id)
	_, err = s.Load(rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsBadID(t *testing.T) {
	err := New(t.TempDir()).Save(&Record{ID: "../escape"})
	assert.Error(t, err)
}

func TestSaveDropsNonFiniteProfiles(t *testing.T) {
	s := New(t.TempDir())
	rec := &Record{FileName: "huge.csv", Outcome: outcome(t, 1e308, 1e308)}
	require.NoError(t, s.Save(rec))

	got, err := s.Load(rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Outcome.Profiles)
	assert.Equal(t, rec.Outcome.Result, got.Outcome.Result)
}
