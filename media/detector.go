package media

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// Detection is a single detected face region in image coordinates.
type Detection struct {
	X          int
	Y          int
	W          int
	H          int
	Confidence float32
}

// FaceDetector locates face regions using an OpenCV DNN model (SSD res10).
type FaceDetector struct {
	Net     gocv.Net
	Enabled bool

	// configuration parameters used during detection
	InputSizeW    int
	InputSizeH    int
	ScaleFactor   float64
	MeanVal       gocv.Scalar
	ConfThreshold float32
}

// NewFaceDetector loads the DNN detection model
func NewFaceDetector(configPath, modelPath string) *FaceDetector {
	if configPath == "" || modelPath == "" {
		log.Println("detection(dnn): config or model path is empty, disabling DNN detector")
		return &FaceDetector{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		log.Printf("detection(dnn): ERROR loading network model: config=%s, model=%s", configPath, modelPath)
		return &FaceDetector{Enabled: false}
	}
	log.Printf("detection(dnn): successfully loaded face detection model")

	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Println("detection(dnn): Set backend/target to CUDA")
	} else {
		if cudaBackendErr != nil {
			log.Printf("detection(dnn): CUDA Backend not available or failed: %v. Using default backend.", cudaBackendErr)
		}
		if cudaTargetErr != nil {
			log.Printf("detection(dnn): CUDA Target not available or failed: %v. Using default target.", cudaTargetErr)
		}

		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Println("detection(dnn): Set backend/target to CPU (Default)")
	}

	return &FaceDetector{
		Net:           net,
		Enabled:       true,
		InputSizeW:    300,
		InputSizeH:    300,
		ScaleFactor:   1.0,
		MeanVal:       gocv.NewScalar(104.0, 177.0, 123.0, 0),
		ConfThreshold: 0.5,
	}
}

func (d *FaceDetector) Close() {
	if d != nil && d.Enabled {
		d.Net.Close()
		log.Println("detection(dnn): closed network")
		d.Enabled = false
	}
}

// DetectFaces runs face detection using the loaded DNN model
func (d *FaceDetector) DetectFaces(img gocv.Mat) []Detection {
	if d == nil || !d.Enabled || img.Empty() {
		return nil
	}

	imgHeight := float32(img.Rows())
	imgWidth := float32(img.Cols())

	blob := gocv.BlobFromImage(img, d.ScaleFactor, image.Pt(d.InputSizeW, d.InputSizeH), d.MeanVal, false, false)
	defer blob.Close()

	d.Net.SetInput(blob, "")
	detectionsMat := d.Net.Forward("")
	defer detectionsMat.Close()

	results := []Detection{}

	sizes := detectionsMat.Size()
	if len(sizes) < 4 {
		log.Printf("detection(dnn): unexpected output matrix dimensions: %v", sizes)
		return results
	}

	numDetections := sizes[2]
	if numDetections == 0 {
		return results
	}

	// reshape the Mat to 2D: [N, 7] for easier access with GetFloatAt(row, col)
	detections2D := detectionsMat.Reshape(1, numDetections*sizes[3])
	detectionsData := detections2D.Reshape(1, numDetections)
	defer detectionsData.Close()

	for i := 0; i < numDetections; i++ {
		confidence := detectionsData.GetFloatAt(i, 2)
		if confidence <= d.ConfThreshold {
			continue
		}

		xMin := detectionsData.GetFloatAt(i, 3) * imgWidth
		yMin := detectionsData.GetFloatAt(i, 4) * imgHeight
		xMax := detectionsData.GetFloatAt(i, 5) * imgWidth
		yMax := detectionsData.GetFloatAt(i, 6) * imgHeight

		xMin = maxFloat32(0, xMin)
		yMin = maxFloat32(0, yMin)
		xMax = minFloat32(imgWidth, xMax)
		yMax = minFloat32(imgHeight, yMax)

		if xMax > xMin && yMax > yMin {
			results = append(results, Detection{
				X:          int(xMin),
				Y:          int(yMin),
				W:          int(xMax - xMin),
				H:          int(yMax - yMin),
				Confidence: confidence,
			})
		}
	}

	return results
}

// BestFace returns the highest-confidence detection, or nil when the image
// contains no detectable face. The tie-break between multiple faces is the
// detector's own convention and deliberately opaque to callers.
func (d *FaceDetector) BestFace(img gocv.Mat) *Detection {
	detections := d.DetectFaces(img)
	if len(detections) == 0 {
		return nil
	}

	best := detections[0]
	for _, det := range detections[1:] {
		if det.Confidence > best.Confidence {
			best = det
		}
	}
	return &best
}
