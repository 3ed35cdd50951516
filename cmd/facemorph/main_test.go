package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facemorph/internal/landmark"
	"github.com/dudu/facemorph/internal/pointio"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("FACEMORPH_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func writeSet(t *testing.T, dir, name string, points landmark.PointSet) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, pointio.WriteCSVFile(path, points))
	return path
}

func TestFrameWeights(t *testing.T) {
	assert.Equal(t, []float64{0.5}, frameWeights(1))
	assert.Equal(t, []float64{0.75, 0.5, 0.25}, frameWeights(3))
}

func TestAverageCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeSet(t, dir, "a.csv", landmark.PointSet{{X: 0, Y: 0}, {X: 10, Y: 10}})
	b := writeSet(t, dir, "b.csv", landmark.PointSet{{X: 3, Y: 4}, {X: 20, Y: 20}})

	out := execute(t, "average", a, b)
	assert.Equal(t, "x,y\n1,2\n15,15\n", out)
}

func TestBlendCommand(t *testing.T) {
	dir := t.TempDir()
	start := writeSet(t, dir, "start.csv", landmark.PointSet{{X: 0, Y: 0}, {X: 10, Y: 10}})
	end := writeSet(t, dir, "end.csv", landmark.PointSet{{X: 10, Y: 10}, {X: 20, Y: 20}})

	out := execute(t, "blend", start, end, "--percent", "0.25")
	assert.Equal(t, "x,y\n7,7\n17,17\n", out)

	frames := filepath.Join(dir, "frames")
	execute(t, "blend", start, end, "--frames", "3", "--out", frames)
	t.Cleanup(func() { blendFrames, blendOut = 0, "" })

	first, err := pointio.ReadCSVFile(filepath.Join(frames, "frame_001.csv"))
	require.NoError(t, err)
	assert.Equal(t, landmark.PointSet{{X: 2, Y: 2}, {X: 12, Y: 12}}, first)

	last, err := pointio.ReadCSVFile(filepath.Join(frames, "frame_003.csv"))
	require.NoError(t, err)
	assert.Equal(t, landmark.PointSet{{X: 7, Y: 7}, {X: 17, Y: 17}}, last)
}

func TestCSVPaths(t *testing.T) {
	paths, err := csvPaths("out", []string{"a/one.jpg", "b/two.png"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a/one.jpg": filepath.Join("out", "one.csv"),
		"b/two.png": filepath.Join("out", "two.csv"),
	}, paths)

	_, err = csvPaths("out", []string{"a/face.jpg", "b/face.png"})
	require.ErrorContains(t, err, "face.csv")
}

func TestPointsRejectsOutputCollision(t *testing.T) {
	t.Setenv("FACEMORPH_CONFIG", "")
	out := filepath.Join(t.TempDir(), "out")
	t.Cleanup(func() { pointsOutDir = "" })

	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"points", "a/face.jpg", "b/face.jpg", "--out", out, "--log-level", "error"})
	err := rootCmd.ExecuteContext(context.Background())

	require.ErrorContains(t, err, "would both be written")
	assert.NoDirExists(t, out)
}
