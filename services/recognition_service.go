package services

import (
	"errors"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/visionattend/attendancebackend/media"
	"github.com/visionattend/attendancebackend/repository"
)

// EmbeddingExtractor yields a face embedding for an image. media.Extractor
// is the production implementation.
type EmbeddingExtractor interface {
	Extract(img gocv.Mat) ([]float32, error)
}

// RecognitionStatus is the user-visible outcome of a recognize call. Every
// rejected outcome is distinguishable from success and from each other.
type RecognitionStatus string

const (
	// StatusRecognized: matched and an attendance row was written
	StatusRecognized RecognitionStatus = "recognized"
	// StatusAlreadyRecorded: matched, but within the attendance cooldown
	StatusAlreadyRecorded RecognitionStatus = "already_recorded"
	// StatusUnknownFace: a nearest candidate existed but was rejected by
	// the threshold; Distance carries how close it came
	StatusUnknownFace RecognitionStatus = "unknown_face"
	// StatusNoCandidates: the store is empty; Distance is nil
	StatusNoCandidates RecognitionStatus = "no_candidates"
	// StatusNoFace: the extractor found no usable face in the image
	StatusNoFace RecognitionStatus = "no_face"
)

// RecognitionResult is the value-returned outcome of the recognize flow.
type RecognitionResult struct {
	Status   RecognitionStatus `json:"status"`
	Name     string            `json:"name,omitempty"`
	Distance *float64          `json:"distance,omitempty"`
}

// RecognitionService orchestrates the two core workflows: recognize-and-log
// and enroll-new-identity. All failures are value-returned; nothing is
// panicked or thrown across the service boundary.
type RecognitionService struct {
	extractor  EmbeddingExtractor
	matcher    *Matcher
	faceRepo   repository.FaceRepositoryInterface
	attendance *AttendanceService
}

// NewRecognitionService wires the extractor, matcher, identity store and
// attendance recorder together.
func NewRecognitionService(
	extractor EmbeddingExtractor,
	matcher *Matcher,
	faceRepo repository.FaceRepositoryInterface,
	attendance *AttendanceService,
) *RecognitionService {
	return &RecognitionService{
		extractor:  extractor,
		matcher:    matcher,
		faceRepo:   faceRepo,
		attendance: attendance,
	}
}

// Recognize extracts an embedding from img, matches it against all enrolled
// identities and records attendance on an accepted match.
func (s *RecognitionService) Recognize(img gocv.Mat) (RecognitionResult, error) {
	probe, err := s.extractor.Extract(img)
	if err != nil {
		if errors.Is(err, media.ErrNoFaceDetected) {
			return RecognitionResult{Status: StatusNoFace}, nil
		}
		return RecognitionResult{}, err
	}

	candidates, err := s.loadCandidates()
	if err != nil {
		return RecognitionResult{}, err
	}

	match := s.matcher.Match(probe, candidates)
	if match.Distance == nil {
		return RecognitionResult{Status: StatusNoCandidates}, nil
	}
	if match.Name == "" {
		return RecognitionResult{Status: StatusUnknownFace, Distance: match.Distance}, nil
	}

	recorded, err := s.attendance.Record(match.Name)
	if err != nil {
		return RecognitionResult{}, fmt.Errorf("matched %q but failed to record attendance: %w", match.Name, err)
	}

	status := StatusRecognized
	if !recorded {
		status = StatusAlreadyRecorded
	}
	log.Printf("recognition: %s name=%q distance=%.4f", status, match.Name, *match.Distance)
	return RecognitionResult{Status: status, Name: match.Name, Distance: match.Distance}, nil
}

// Enroll computes the embedding for img and stores it under name. A false
// result means the name is already taken; the original record is untouched.
// ErrNoFaceDetected propagates when the image holds no usable face.
func (s *RecognitionService) Enroll(name string, img gocv.Mat) (bool, error) {
	embedding, err := s.extractor.Extract(img)
	if err != nil {
		return false, err
	}
	return s.faceRepo.Enroll(name, embedding)
}

// UpdateEmbedding replaces the stored vector for an existing identity with
// one computed from img. A false result means the name is not enrolled.
func (s *RecognitionService) UpdateEmbedding(name string, img gocv.Mat) (bool, error) {
	embedding, err := s.extractor.Extract(img)
	if err != nil {
		return false, err
	}
	return s.faceRepo.UpdateEmbedding(name, embedding)
}

// Rename changes an identity's name; false when the target name is taken or
// the old name is unknown.
func (s *RecognitionService) Rename(oldName, newName string) (bool, error) {
	return s.faceRepo.Rename(oldName, newName)
}

// Delete removes an enrolled identity; false when it was not enrolled.
func (s *RecognitionService) Delete(name string) (bool, error) {
	return s.faceRepo.Delete(name)
}

// ListIdentities returns all enrolled names in storage order.
func (s *RecognitionService) ListIdentities() ([]string, error) {
	return s.faceRepo.ListNames()
}

func (s *RecognitionService) loadCandidates() ([]Candidate, error) {
	faces, err := s.faceRepo.GetAll()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(faces))
	for _, face := range faces {
		candidates = append(candidates, Candidate{Name: face.Name, Embedding: face.GetEmbedding()})
	}
	return candidates, nil
}
