package locator

import (
	"strconv"
	"strings"

	"github.com/dudu/facemorph/internal/landmark"
)

// NoFaceMarker prefixes detector output when no face was found.
const NoFaceMarker = "No face found"

// ParseOutput decodes detector text of the form "X-Y,X-Y,...".
// Output starting with NoFaceMarker yields landmark.ErrNoFace.
func ParseOutput(imagePath, output string) (landmark.PointSet, error) {
	if strings.HasPrefix(output, NoFaceMarker) {
		return nil, landmark.ErrNoFace
	}

	body := strings.TrimRight(output, " \t\r\n")
	if body == "" {
		return nil, &ParseError{ImagePath: imagePath, Token: output, Reason: "empty output"}
	}

	pairs := strings.Split(body, ",")
	points := make(landmark.PointSet, 0, len(pairs))
	for _, pair := range pairs {
		pt, err := parsePair(pair)
		if err != nil {
			return nil, &ParseError{ImagePath: imagePath, Token: pair, Reason: err.Error()}
		}
		points = append(points, pt)
	}
	return points, nil
}

// parsePair splits "X-Y" on the first hyphen that is not a leading sign.
func parsePair(pair string) (landmark.Point, error) {
	s := strings.TrimSpace(pair)
	if len(s) < 3 {
		return landmark.Point{}, errPair
	}
	sep := strings.IndexByte(s[1:], '-')
	if sep < 0 {
		return landmark.Point{}, errPair
	}
	sep++

	x, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return landmark.Point{}, errCoord
	}
	y, err := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err != nil {
		return landmark.Point{}, errCoord
	}
	return landmark.Point{X: x, Y: y}, nil
}

type parseReason string

func (r parseReason) Error() string { return string(r) }

const (
	errPair  parseReason = "expected X-Y pair"
	errCoord parseReason = "invalid integer coordinate"
)
