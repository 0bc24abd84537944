package media

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// SaveSnapshot stores a downscaled JPEG copy of an enrollment image under
// dir with a UUID filename, for display in the face management UI.
// Returns the full path where the snapshot was saved.
func SaveSnapshot(img gocv.Mat, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	goImg, err := img.ToImage()
	if err != nil {
		return "", fmt.Errorf("failed to convert frame for snapshot: %w", err)
	}

	thumb := imaging.Fit(goImg, 320, 320, imaging.Lanczos)

	snapUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for snapshot: %w", err)
	}
	snapshotPath := filepath.Join(dir, snapUUID.String()+".jpg")

	if err := imaging.Save(thumb, snapshotPath, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("failed to save snapshot to %s: %w", snapshotPath, err)
	}

	log.Printf("saved enrollment snapshot %s", snapshotPath)
	return snapshotPath, nil
}
