package pointio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/dudu/facemorph/internal/landmark"
)

type csvPoint struct {
	X int `csv:"x"`
	Y int `csv:"y"`
}

// WriteCSV writes one "x,y" row per point after a header
func WriteCSV(w io.Writer, points landmark.PointSet) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(csvPoint{}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for i, p := range points {
		if err := enc.Encode(csvPoint{X: p.X, Y: p.Y}); err != nil {
			return fmt.Errorf("encode point %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads points written by WriteCSV. Empty input is an empty set.
func ReadCSV(r io.Reader) (landmark.PointSet, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return landmark.PointSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	points := landmark.PointSet{}
	for {
		var p csvPoint
		err := dec.Decode(&p)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode point %d: %w", len(points), err)
		}
		points = append(points, landmark.Point{X: p.X, Y: p.Y})
	}
	return points, nil
}

// ReadCSVFile reads a point set from a CSV file
func ReadCSVFile(path string) (landmark.PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// WriteCSVFile writes a point set to a CSV file, replacing it
func WriteCSVFile(path string, points landmark.PointSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// FormatText renders points in the detector grammar "X-Y,X-Y,..."
func FormatText(points landmark.PointSet) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
