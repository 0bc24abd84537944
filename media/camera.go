package media

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// frameSource is the slice of gocv.VideoCapture the capture loop needs.
type frameSource interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Camera pumps frames from a video device on a background goroutine. Frames
// are handed to the consumer through a depth-one channel: when consumption
// is slower than capture, the stale frame is dropped and the latest wins.
type Camera struct {
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	frames   chan gocv.Mat
	interval time.Duration

	// open is swapped in tests to avoid touching real hardware
	open func() (frameSource, error)
}

// NewCamera creates a camera bound to the given device index. Nothing is
// opened until Start.
func NewCamera(deviceID int, fps int) *Camera {
	if fps <= 0 {
		fps = 30
	}
	return &Camera{
		frames:   make(chan gocv.Mat, 1),
		interval: time.Second / time.Duration(fps),
		open: func() (frameSource, error) {
			return gocv.OpenVideoCapture(deviceID)
		},
	}
}

// Start opens the device and launches the capture loop. Starting a running
// camera is a no-op. An open failure is reported once; the loop does not run.
func (c *Camera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	source, err := c.open()
	if err != nil {
		return fmt.Errorf("capture: failed to open camera device: %w", err)
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.running = true
	go c.loop(source, c.stopCh, c.doneCh)

	log.Println("capture: camera started")
	return nil
}

// Stop terminates the capture loop and releases the device, waiting for the
// loop to exit (bounded by one frame interval). Stopping an already-stopped
// or never-started camera is a safe no-op.
func (c *Camera) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	close(c.stopCh)
	<-c.doneCh
	c.running = false

	// drop a buffered frame nobody will consume
	select {
	case stale := <-c.frames:
		stale.Close()
	default:
	}

	log.Println("capture: camera stopped")
}

// IsRunning reports whether the capture loop is active.
func (c *Camera) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Frames is the stream of captured frames. The receiver owns each Mat and
// must Close it.
func (c *Camera) Frames() <-chan gocv.Mat {
	return c.frames
}

// loop owns the device handle: it is released here, never concurrently with
// a blocking Read.
func (c *Camera) loop(source frameSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if err := source.Close(); err != nil {
			log.Printf("capture: error releasing camera: %v", err)
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if ok := source.Read(&frame); !ok || frame.Empty() {
				continue
			}

			clone := frame.Clone()
			select {
			case c.frames <- clone:
			default:
				// consumer is behind: replace the stale frame
				select {
				case stale := <-c.frames:
					stale.Close()
				default:
				}
				select {
				case c.frames <- clone:
				default:
					clone.Close()
				}
			}
		}
	}
}
