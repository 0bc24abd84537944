package media

import (
	"bytes"
	"fmt"
	"log"

	"github.com/rwcarlsen/goexif/exif"
	"gocv.io/x/gocv"
)

// DecodeImage decodes an image buffer (e.g. a multipart upload) into a BGR
// Mat. OpenCV's imdecode ignores EXIF, so the orientation tag is read
// separately and the decoded frame is rotated back upright before detection.
func DecodeImage(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("%w: imdecode failed", ErrImageDecode)
	}

	orientation := exifOrientation(data)
	if orientation <= 1 {
		return mat, nil
	}

	corrected, ok := applyOrientation(mat, orientation)
	if !ok {
		return mat, nil
	}
	mat.Close()
	return corrected, nil
}

// exifOrientation returns the EXIF orientation tag value, or 1 (upright)
// when the image carries no usable EXIF block.
func exifOrientation(data []byte) int {
	exifData, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := exifData.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 1
	}

	val, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return val
}

// applyOrientation maps the decoded frame back to orientation 1. The rare
// transpose orientations (5, 7) are left as-is; the detector tolerates them.
func applyOrientation(src gocv.Mat, orientation int) (gocv.Mat, bool) {
	dst := gocv.NewMat()
	switch orientation {
	case 2:
		gocv.Flip(src, &dst, 1)
	case 3:
		gocv.Rotate(src, &dst, gocv.Rotate180Clockwise)
	case 4:
		gocv.Flip(src, &dst, 0)
	case 6:
		gocv.Rotate(src, &dst, gocv.Rotate90Clockwise)
	case 8:
		gocv.Rotate(src, &dst, gocv.Rotate90CounterClockwise)
	default:
		log.Printf("media: unhandled EXIF orientation %d, leaving image as-is", orientation)
		dst.Close()
		return gocv.Mat{}, false
	}
	return dst, true
}
