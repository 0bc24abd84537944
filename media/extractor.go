package media

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrNoFaceDetected is reported when the detector finds no usable face in an
// image. It is a normal outcome, not a failure requiring retry or abort.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrImageDecode is reported when an image path or buffer cannot be decoded.
var ErrImageDecode = errors.New("cannot decode image")

// Extractor combines the face detector and the embedding network into the
// single extract(image) -> vector pipeline. It is stateless: given fixed
// model weights the result is a pure function of the image.
type Extractor struct {
	Detector *FaceDetector
	Model    *EmbeddingModel
}

// NewExtractor wires a detector and an embedding model together.
func NewExtractor(detector *FaceDetector, model *EmbeddingModel) *Extractor {
	return &Extractor{Detector: detector, Model: model}
}

// Extract detects the single best face in img and returns its embedding.
// Returns ErrNoFaceDetected when no face is found.
func (e *Extractor) Extract(img gocv.Mat) ([]float32, error) {
	if img.Empty() {
		return nil, ErrImageDecode
	}

	det := e.Detector.BestFace(img)
	if det == nil {
		return nil, ErrNoFaceDetected
	}

	region := img.Region(image.Rect(det.X, det.Y, det.X+det.W, det.Y+det.H))
	defer region.Close()

	embedding := e.Model.ExtractEmbedding(region)
	if embedding == nil {
		return nil, fmt.Errorf("embedding extraction failed for detected face at [%d,%d,%d,%d]", det.X, det.Y, det.W, det.H)
	}
	return embedding, nil
}

// Close releases both underlying networks.
func (e *Extractor) Close() {
	e.Detector.Close()
	e.Model.Close()
}
