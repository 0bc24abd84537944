package media

import (
	"image"
	"log"
	"math"
	"os"

	"gocv.io/x/gocv"
)

// EmbeddingModel wraps a FaceNet-style embedding network loaded through
// OpenCV DNN. It turns a cropped face region into a fixed-length,
// L2-normalized float32 vector.
type EmbeddingModel struct {
	Net     gocv.Net
	Enabled bool

	InputSizeW int
	InputSizeH int
}

// NewEmbeddingModel loads the face embedding network. The model is loaded
// once at process start and shared by reference; there is no ambient global.
func NewEmbeddingModel(modelPath string) *EmbeddingModel {
	if modelPath == "" {
		log.Println("recognition: model path is empty, disabling face recognition")
		return &EmbeddingModel{Enabled: false}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		log.Printf("recognition: ERROR - model file does not exist: %s", modelPath)
		return &EmbeddingModel{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("recognition: ERROR - ReadNet returned an empty network. Check file path and integrity.")
		return &EmbeddingModel{Enabled: false}
	}
	log.Printf("recognition: successfully loaded embedding model")

	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Println("recognition: Set backend/target to CUDA")
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Println("recognition: Set backend/target to CPU (Default)")
	}

	return &EmbeddingModel{
		Net:        net,
		Enabled:    true,
		InputSizeW: 160,
		InputSizeH: 160,
	}
}

func (m *EmbeddingModel) Close() {
	if m != nil && m.Enabled {
		m.Net.Close()
		log.Println("recognition: closed embedding network")
		m.Enabled = false
	}
}

// ExtractEmbedding runs the embedding network over a cropped face region.
// Returns nil when the model is disabled or the region is unusable.
func (m *EmbeddingModel) ExtractEmbedding(faceRegion gocv.Mat) []float32 {
	if m == nil || !m.Enabled || faceRegion.Empty() {
		return nil
	}

	processed := m.preprocessFace(faceRegion)
	if processed.Empty() {
		log.Printf("recognition: ERROR - face preprocessing produced an empty matrix")
		return nil
	}
	defer processed.Close()

	// normalize pixel values to [0,1]; the network expects RGB input
	blob := gocv.BlobFromImage(processed, 1.0/255.0, image.Pt(m.InputSizeW, m.InputSizeH), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	m.Net.SetInput(blob, "")
	output := m.Net.Forward("")
	defer output.Close()

	embedding := flattenOutput(output)
	if len(embedding) == 0 {
		return nil
	}

	return normalizeEmbedding(embedding)
}

// preprocessFace converts the region to RGB float32 at the network input size
func (m *EmbeddingModel) preprocessFace(faceRegion gocv.Mat) gocv.Mat {
	var processed gocv.Mat
	if faceRegion.Channels() == 3 {
		processed = gocv.NewMat()
		gocv.CvtColor(faceRegion, &processed, gocv.ColorBGRToRGB)
	} else {
		processed = faceRegion.Clone()
	}

	aligned := gocv.NewMat()
	gocv.Resize(processed, &aligned, image.Pt(m.InputSizeW, m.InputSizeH), 0, 0, gocv.InterpolationLinear)
	processed.Close()

	converted := gocv.NewMat()
	aligned.ConvertTo(&converted, gocv.MatTypeCV32F)
	aligned.Close()

	return converted
}

// flattenOutput extracts the embedding vector from the model output
func flattenOutput(output gocv.Mat) []float32 {
	if len(output.Size()) == 0 {
		return nil
	}

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embedding := make([]float32, flattened.Cols())
	for i := 0; i < len(embedding); i++ {
		embedding[i] = flattened.GetFloatAt(0, i)
	}
	return embedding
}

// normalizeEmbedding scales the vector to unit L2 length
func normalizeEmbedding(embedding []float32) []float32 {
	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return embedding
	}

	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}
	return normalized
}
