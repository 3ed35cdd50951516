package detector

import (
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/facemorph/internal/inference"
)

// scrfdStrides are the feature map strides of the three SCRFD heads
var scrfdStrides = [3]int{8, 16, 32}

// scrfdAnchors is the number of anchors per feature map position
const scrfdAnchors = 2

// SCRFD implements the SCRFD face detector
type SCRFD struct {
	session       *inference.Session
	inputSize     int
	confThreshold float32
	nmsThreshold  float32
}

// NewSCRFD creates a new SCRFD detector
func NewSCRFD(modelPath string, inputSize int, confThreshold, nmsThreshold float32, log logrus.FieldLogger) (*SCRFD, error) {
	// 1 input, 3 outputs (score, bbox, kps) per stride
	inputNames := []string{"input.1"}
	outputNames := []string{
		"score_8", "score_16", "score_32",
		"bbox_8", "bbox_16", "bbox_32",
		"kps_8", "kps_16", "kps_32",
	}

	session, err := inference.NewSession(modelPath, inputNames, outputNames, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}

	return &SCRFD{
		session:       session,
		inputSize:     inputSize,
		confThreshold: confThreshold,
		nmsThreshold:  nmsThreshold,
	}, nil
}

// Detect finds faces in an image, highest score first
func (s *SCRFD) Detect(img gocv.Mat) ([]Face, error) {
	blob, scale := s.preprocess(img)
	defer blob.Close()

	input, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(s.inputSize), int64(s.inputSize)),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	// outputs are ordered score_*, bbox_*, kps_*; keypoints are not used
	tensors := make([]*ort.Tensor[float32], 0, 9)
	defer func() {
		for _, t := range tensors {
			t.Destroy()
		}
	}()
	for _, width := range []int64{1, 4, 10} {
		for _, stride := range scrfdStrides {
			fm := int64(s.inputSize / stride)
			t, err := inference.NewEmptyTensor[float32](fm*fm*scrfdAnchors, width)
			if err != nil {
				return nil, fmt.Errorf("failed to create output tensor: %w", err)
			}
			tensors = append(tensors, t)
		}
	}

	outputs := make([]ort.Value, len(tensors))
	for i, t := range tensors {
		outputs[i] = t
	}
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	var faces []Face
	for level, stride := range scrfdStrides {
		faces = s.decodeLevel(faces, stride,
			tensors[level].GetData(),
			tensors[level+3].GetData(),
			scale, img.Cols(), img.Rows())
	}

	return nms(faces, s.nmsThreshold), nil
}

// preprocess letterboxes the image into the model input and returns the
// NCHW blob with the applied scale
func (s *SCRFD) preprocess(img gocv.Mat) (gocv.Mat, float32) {
	scale := float32(s.inputSize) / float32(max(img.Rows(), img.Cols()))
	newWidth := int(float32(img.Cols()) * scale)
	newHeight := int(float32(img.Rows()) * scale)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)

	// pad bottom/right so model coordinates only need rescaling
	padded := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), s.inputSize, s.inputSize, gocv.MatTypeCV8UC3)
	defer padded.Close()
	roi := padded.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()

	// (x - 127.5) / 128, BGR -> RGB, HWC -> CHW
	blob := gocv.BlobFromImage(padded, 1.0/128.0, image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)

	return blob, scale
}

// decodeLevel appends the faces of one stride whose score passes the
// confidence threshold. Boxes are distances from the anchor center in
// stride units.
func (s *SCRFD) decodeLevel(faces []Face, stride int, scores, boxes []float32, scale float32, width, height int) []Face {
	fm := s.inputSize / stride
	st := float32(stride)

	idx := 0
	for y := 0; y < fm; y++ {
		for x := 0; x < fm; x++ {
			cx := float32(x) * st
			cy := float32(y) * st
			for a := 0; a < scrfdAnchors; a, idx = a+1, idx+1 {
				// scores are already probabilities
				score := scores[idx]
				if score < s.confThreshold {
					continue
				}

				b := boxes[idx*4 : idx*4+4]
				faces = append(faces, Face{
					BoundingBox: BoundingBox{
						X1: clamp((cx-b[0]*st)/scale, 0, float32(width)),
						Y1: clamp((cy-b[1]*st)/scale, 0, float32(height)),
						X2: clamp((cx+b[2]*st)/scale, 0, float32(width)),
						Y2: clamp((cy+b[3]*st)/scale, 0, float32(height)),
					},
					Score: score,
				})
			}
		}
	}
	return faces
}

// Close releases detector resources
func (s *SCRFD) Close() error {
	return s.session.Destroy()
}

func clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}

// bytesToFloat32 reinterprets a little-endian float32 blob
func bytesToFloat32(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		result[i] = math.Float32frombits(bits)
	}
	return result
}
