package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/sim"
)

func runReference(t *testing.T, steps int) ([]forcing.Term, dynamo.Config, *sim.Result) {
	t.Helper()
	terms := []forcing.Term{forcing.NewTerm(1, 0.5, 0, 1)}
	cfg := dynamo.DefaultConfig()
	cfg.Steps = steps

	s := sim.New(nil)
	result, err := s.Run(context.Background(), terms, cfg)
	require.NoError(t, err)
	return terms, cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	terms, cfg, result := runReference(t, 50)
	result.Metrics["energy"] = 1.5
	result.Metrics["broken"] = math.NaN()

	runID, err := st.Save("reference", terms, cfg, result)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "reference", meta.Label)
	assert.Equal(t, 50, meta.Steps)
	assert.Equal(t, 50, meta.StepsTaken)
	assert.True(t, meta.Complete)
	assert.Equal(t, terms, meta.Terms)
	assert.Equal(t, 1.5, meta.Metrics["energy"])
	assert.NotContains(t, meta.Metrics, "broken")

	signal, noise, err := st.LoadSeries(runID)
	require.NoError(t, err)
	assert.Equal(t, result.Signal, signal)
	assert.Equal(t, result.Noise, noise)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	terms, cfg, result := runReference(t, 5)
	_, err = st.Save("a", terms, cfg, result)
	require.NoError(t, err)
	_, err = st.Save("b", terms, cfg, result)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(st.baseDir, "stray.txt"), nil, 0644))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	terms, cfg, result := runReference(t, 4)
	runID, err := st.Save("", terms, cfg, result)
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", SignalFile, NoiseFile} {
		_, err := os.Stat(filepath.Join(st.Dir(runID), name))
		assert.NoError(t, err, "%s not created", name)
	}

	data, err := os.ReadFile(filepath.Join(st.Dir(runID), NoiseFile))
	require.NoError(t, err)
	lines := bytes.Split(data, []byte("\n"))
	assert.Len(t, lines, 4)
	assert.Equal(t, "0 0", string(lines[0]))
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	terms, cfg, result := runReference(t, 10)
	runID, err := st.Save("export", terms, cfg, result)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.Run.ID)
	assert.Len(t, data.Signal, 10)
	assert.Len(t, data.Noise, 10)

	assert.Error(t, st.ExportJSON(&buf, "missing"))
}
