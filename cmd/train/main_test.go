package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bustime.org/internal/artifact"
	"bustime.org/internal/logging"
)

const trainingCSV = `bus,crowd,traffic,user_experience,travel_time,stop1_time,stop2_time
12,High,Low,Good,10,08:00,08:10
12,High,Low,Good,12,09:00,09:12
7,Low,High,Bad,20,10:00,10:20
`

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-data", "trips.csv", "-out", "model.zst"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "trips.csv", o.data)
	assert.Equal(t, "model.zst", o.out)

	_, err = parseFlags([]string{"-gtfs", "feed.zip"}, io.Discard)
	assert.EqualError(t, err, "-gtfs requires -gtfs-out")

	_, err = parseFlags([]string{"-data", ""}, io.Discard)
	assert.Error(t, err)
}

func TestRunWritesLoadableArtifact(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "trips.csv")
	out := filepath.Join(dir, "model.zst")
	require.NoError(t, os.WriteFile(data, []byte(trainingCSV), 0o644))

	trainedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := run(options{data: data, city: "singapore", out: out}, logging.Discard(), func() time.Time { return trainedAt })
	require.NoError(t, err)

	bundle, err := artifact.Load(out, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "travel_time", bundle.Target)
	assert.Equal(t, 3, bundle.Model.Samples)
	assert.Len(t, bundle.Model.Groups, 2)
	assert.Equal(t, []string{"High", "Low"}, bundle.Encoders.Crowd)
	assert.Equal(t, "v1-20240301T120000Z", bundle.Label())

	encoders, err := bundle.EncoderSet()
	require.NoError(t, err)
	codes, err := encoders.Encode("High", "Low", "Good")
	require.NoError(t, err)

	got, err := bundle.Estimator().Predict(0, codes.Crowd, codes.Traffic, codes.UserExperience)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, got, 1e-9)
}

func TestRunRejectsDatasetWithoutTarget(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "trips.csv")
	require.NoError(t, os.WriteFile(data, []byte("bus,crowd,traffic,user_experience\n12,High,Low,Good\n"), 0o644))

	err := run(options{data: data, city: "singapore", out: filepath.Join(dir, "model.zst")}, logging.Discard(), time.Now)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "model.zst"))
}

func TestRunMissingGTFSFeed(t *testing.T) {
	dir := t.TempDir()
	err := run(options{gtfs: filepath.Join(dir, "feed.zip"), gtfsOut: filepath.Join(dir, "out.csv")}, logging.Discard(), time.Now)
	assert.Error(t, err)
}
