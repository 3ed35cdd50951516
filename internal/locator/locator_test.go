package locator_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facemorph/internal/landmark"
	"github.com/dudu/facemorph/internal/locator"
)

// fakeDetector serves canned detector text per image path
type fakeDetector struct {
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeDetector) Detect(_ context.Context, imagePath string) (landmark.PointSet, error) {
	if err, ok := f.errs[imagePath]; ok {
		return nil, err
	}
	out, ok := f.outputs[imagePath]
	if !ok {
		return nil, fmt.Errorf("unexpected image %s", imagePath)
	}
	return locator.ParseOutput(imagePath, out)
}

func TestFacePointsWithoutBoundary(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := locator.New(&fakeDetector{outputs: map[string]string{"a.jpg": "10-20,30-40\n"}}, 1, log)

	points, err := l.FacePoints(context.Background(), "a.jpg", false)
	require.NoError(t, err)
	assert.Equal(t, landmark.PointSet{{X: 10, Y: 20}, {X: 30, Y: 40}}, points)
}

func TestFacePointsWithBoundary(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := locator.New(&fakeDetector{outputs: map[string]string{"a.jpg": "0-0,100-50"}}, 1, log)

	points, err := l.FacePoints(context.Background(), "a.jpg", true)
	require.NoError(t, err)
	assert.Equal(t, landmark.PointSet{
		{X: 0, Y: 0}, {X: 100, Y: 50},
		{X: 10, Y: 5}, {X: 90, Y: 5},
	}, points)
}

func TestFacePointsNoFace(t *testing.T) {
	log, hook := test.NewNullLogger()
	l := locator.New(&fakeDetector{outputs: map[string]string{"xyz.jpg": "No face found: xyz.jpg\n"}}, 1, log)

	points, err := l.FacePoints(context.Background(), "xyz.jpg", true)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "xyz.jpg", hook.LastEntry().Data["image"])
}

func TestFacePointsParseError(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := locator.New(&fakeDetector{outputs: map[string]string{"bad.jpg": "10-20,oops"}}, 1, log)

	points, err := l.FacePoints(context.Background(), "bad.jpg", true)
	assert.Nil(t, points)

	var perr *locator.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.jpg", perr.ImagePath)
	assert.Equal(t, "oops", perr.Token)
	assert.ErrorIs(t, err, locator.ErrMalformedOutput)
}

func TestBatch(t *testing.T) {
	log, _ := test.NewNullLogger()
	boom := &locator.ExecutionError{ImagePath: "c.jpg", Err: errors.New("boom")}
	det := &fakeDetector{
		outputs: map[string]string{
			"a.jpg": "1-2,3-4",
			"b.jpg": "No face found",
			"d.jpg": "5-6",
		},
		errs: map[string]error{"c.jpg": boom},
	}
	l := locator.New(det, 3, log)

	results := l.Batch(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}, false)
	require.Len(t, results, 4)

	assert.Equal(t, "a.jpg", results[0].ImagePath)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, landmark.PointSet{{X: 1, Y: 2}, {X: 3, Y: 4}}, results[0].Points)

	assert.Equal(t, "b.jpg", results[1].ImagePath)
	assert.NoError(t, results[1].Err)
	assert.Empty(t, results[1].Points)

	assert.Equal(t, "c.jpg", results[2].ImagePath)
	assert.ErrorIs(t, results[2].Err, boom)
	assert.Nil(t, results[2].Points)

	assert.Equal(t, "d.jpg", results[3].ImagePath)
	assert.NoError(t, results[3].Err)
	assert.Equal(t, landmark.PointSet{{X: 5, Y: 6}}, results[3].Points)
}

func TestBatchCancelled(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := locator.New(&fakeDetector{outputs: map[string]string{"a.jpg": "1-2"}}, 1, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := l.Batch(ctx, []string{"a.jpg"}, false)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

// writeScript creates an executable shell script standing in for the detector
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detector.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecDetector(t *testing.T) {
	script := writeScript(t, `
if [ "$1" != "model.dat" ]; then
  echo "bad model $1" >&2
  exit 2
fi
echo "10-20,30-40"
`)
	log, _ := test.NewNullLogger()
	d, err := locator.NewExecDetector(locator.ExecConfig{Executable: script, ModelPath: "model.dat"}, log)
	require.NoError(t, err)

	points, err := d.Detect(context.Background(), "face.jpg")
	require.NoError(t, err)
	assert.Equal(t, landmark.PointSet{{X: 10, Y: 20}, {X: 30, Y: 40}}, points)
}

func TestExecDetectorNoFace(t *testing.T) {
	script := writeScript(t, `echo "No face found: $2"`)
	log, _ := test.NewNullLogger()
	d, err := locator.NewExecDetector(locator.ExecConfig{Executable: script, ModelPath: "model.dat"}, log)
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), "xyz.jpg")
	assert.ErrorIs(t, err, landmark.ErrNoFace)
}

func TestExecDetectorExitStatus(t *testing.T) {
	script := writeScript(t, `echo "cannot open $2" >&2; exit 3`)
	log, _ := test.NewNullLogger()
	d, err := locator.NewExecDetector(locator.ExecConfig{Executable: script, ModelPath: "model.dat"}, log)
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), "missing.jpg")
	var eerr *locator.ExecutionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "missing.jpg", eerr.ImagePath)
	assert.Contains(t, eerr.Stderr, "cannot open missing.jpg")
	assert.Contains(t, err.Error(), "missing.jpg")
}

func TestExecDetectorMissingBinary(t *testing.T) {
	log, _ := test.NewNullLogger()
	d, err := locator.NewExecDetector(locator.ExecConfig{
		Executable: filepath.Join(t.TempDir(), "nope"),
		ModelPath:  "model.dat",
	}, log)
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), "a.jpg")
	var eerr *locator.ExecutionError
	assert.ErrorAs(t, err, &eerr)
}

func TestExecDetectorTimeout(t *testing.T) {
	script := writeScript(t, "exec sleep 5\n")
	log, _ := test.NewNullLogger()
	d, err := locator.NewExecDetector(locator.ExecConfig{
		Executable: script,
		ModelPath:  "model.dat",
		Timeout:    50 * time.Millisecond,
	}, log)
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), "a.jpg")
	var eerr *locator.ExecutionError
	require.ErrorAs(t, err, &eerr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewExecDetectorRequiresPaths(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := locator.NewExecDetector(locator.ExecConfig{ModelPath: "m"}, log)
	assert.Error(t, err)
	_, err = locator.NewExecDetector(locator.ExecConfig{Executable: "e"}, log)
	assert.Error(t, err)
}
