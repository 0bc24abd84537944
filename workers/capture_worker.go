package workers

import (
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/visionattend/attendancebackend/services"
)

// liveCamera is the slice of media.Camera the worker needs.
type liveCamera interface {
	Start() error
	Stop()
	Frames() <-chan gocv.Mat
}

// frameRecognizer runs the recognize-and-log pipeline on a single frame.
// services.RecognitionService is the production implementation.
type frameRecognizer interface {
	Recognize(img gocv.Mat) (services.RecognitionResult, error)
}

// CaptureWorker drives live recognition: it consumes camera frames on a
// background goroutine and runs the recognize-and-log pipeline on a
// throttled subset of them. There is exactly one worker, no pool.
type CaptureWorker struct {
	camera     liveCamera
	recognizer frameRecognizer
	interval   time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// lastResult has its own lock: the run loop writes it while Stop may be
	// holding mu across the doneCh wait, so run must never take mu
	resultMu   sync.Mutex
	lastResult *services.RecognitionResult
}

// NewCaptureWorker creates the worker. interval throttles how often frames
// are pushed through the embedding model; frames between ticks are dropped.
func NewCaptureWorker(camera liveCamera, recognizer frameRecognizer, interval time.Duration) *CaptureWorker {
	if interval <= 0 {
		interval = time.Second
	}
	return &CaptureWorker{
		camera:     camera,
		recognizer: recognizer,
		interval:   interval,
	}
}

// Start opens the camera and launches the recognition loop. A camera open
// failure is reported once here; the loop does not start.
func (w *CaptureWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.camera.Start(); err != nil {
		return err
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(w.stopCh, w.doneCh)

	log.Printf("capture worker started (recognizing every %s)", w.interval)
	return nil
}

// Stop terminates the loop and releases the camera, waiting for an in-flight
// recognition to finish. Safe to call on a stopped or never-started worker.
func (w *CaptureWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.stopCh)
	<-w.doneCh
	w.camera.Stop()
	w.running = false
	log.Println("capture worker stopped")
}

// IsRunning reports whether live recognition is active.
func (w *CaptureWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// LastResult returns the most recent recognition outcome, or nil before the
// first sampled frame.
func (w *CaptureWorker) LastResult() *services.RecognitionResult {
	w.resultMu.Lock()
	defer w.resultMu.Unlock()
	return w.lastResult
}

func (w *CaptureWorker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var lastRun time.Time
	for {
		select {
		case <-stop:
			return
		case frame := <-w.camera.Frames():
			if time.Since(lastRun) < w.interval {
				frame.Close()
				continue
			}
			lastRun = time.Now()

			result, err := w.recognizer.Recognize(frame)
			frame.Close()
			if err != nil {
				// the loop never dies on a bad frame
				log.Printf("capture worker: recognition error: %v", err)
				continue
			}

			w.resultMu.Lock()
			w.lastResult = &result
			w.resultMu.Unlock()
		}
	}
}
