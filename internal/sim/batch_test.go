package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/metrics"
)

func TestBatchMatchesSequentialRuns(t *testing.T) {
	defer goleak.VerifyNone(t)

	terms := []forcing.Term{forcing.NewTerm(1.5, 1, 0.2, 0.4)}
	jobs := make([]Job, 0, 4)
	for _, n := range []int{100, 500, 1000, 2000} {
		cfg := dynamo.DefaultConfig()
		cfg.Steps = n
		jobs = append(jobs, Job{Name: "n", Terms: terms, Config: cfg})
	}

	results, err := NewBatch(nil, 2).
		WithMetrics(func() []dynamo.Metric { return []dynamo.Metric{metrics.NewNoiseRMS()} }).
		Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, job := range jobs {
		signal, noise, err := Run(job.Terms, job.Config)
		require.NoError(t, err)
		assert.Equal(t, signal, results[i].Signal, "job %d", i)
		assert.Equal(t, noise, results[i].Noise, "job %d", i)
		assert.Contains(t, results[i].Metrics, "noise_rms")
	}
}

func TestBatchFailsOnInvalidJob(t *testing.T) {
	defer goleak.VerifyNone(t)

	jobs := []Job{
		{Name: "ok", Terms: []forcing.Term{forcing.NewTerm(1, 1, 0, 1)}, Config: dynamo.DefaultConfig()},
		{Name: "bad", Terms: []forcing.Term{{Tau: 0}}, Config: dynamo.DefaultConfig()},
	}

	results, err := NewBatch(nil, 0).Run(context.Background(), jobs)
	assert.Nil(t, results)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrInvalidParameter))
	assert.Contains(t, err.Error(), `job "bad"`)
}
