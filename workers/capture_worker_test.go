package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/visionattend/attendancebackend/services"
)

// fakeLiveCamera feeds frames from a plain channel, no device involved.
type fakeLiveCamera struct {
	frames chan gocv.Mat
	stops  atomic.Int32
}

func newFakeLiveCamera() *fakeLiveCamera {
	return &fakeLiveCamera{frames: make(chan gocv.Mat, 1)}
}

func (c *fakeLiveCamera) Start() error            { return nil }
func (c *fakeLiveCamera) Stop()                   { c.stops.Add(1) }
func (c *fakeLiveCamera) Frames() <-chan gocv.Mat { return c.frames }

// blockingRecognizer parks inside Recognize until released, standing in for
// a slow model forward pass.
type blockingRecognizer struct {
	entered chan struct{}
	release chan struct{}
	result  services.RecognitionResult
}

func (r *blockingRecognizer) Recognize(img gocv.Mat) (services.RecognitionResult, error) {
	close(r.entered)
	<-r.release
	return r.result, nil
}

// fixedRecognizer returns the same outcome for every frame.
type fixedRecognizer struct {
	result services.RecognitionResult
}

func (r *fixedRecognizer) Recognize(img gocv.Mat) (services.RecognitionResult, error) {
	return r.result, nil
}

func TestCaptureWorkerStopWithoutStart(t *testing.T) {
	w := NewCaptureWorker(newFakeLiveCamera(), &fixedRecognizer{}, time.Second)

	assert.NotPanics(t, func() { w.Stop() })
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.LastResult())
}

func TestCaptureWorkerLifecycle(t *testing.T) {
	cam := newFakeLiveCamera()
	w := NewCaptureWorker(cam, &fixedRecognizer{}, time.Millisecond)

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Start(), "starting a running worker is a no-op")

	w.Stop()
	assert.False(t, w.IsRunning())
	assert.NotPanics(t, func() { w.Stop() })
	assert.Equal(t, int32(1), cam.stops.Load(), "the camera must be released exactly once")
}

func TestCaptureWorkerStoresLastResult(t *testing.T) {
	cam := newFakeLiveCamera()
	want := services.RecognitionResult{Status: services.StatusRecognized, Name: "alice"}
	w := NewCaptureWorker(cam, &fixedRecognizer{result: want}, time.Millisecond)

	require.NoError(t, w.Start())
	defer w.Stop()

	cam.frames <- gocv.Mat{}

	assert.Eventually(t, func() bool {
		last := w.LastResult()
		return last != nil && last.Name == "alice"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCaptureWorkerStopDuringRecognition(t *testing.T) {
	cam := newFakeLiveCamera()
	rec := &blockingRecognizer{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		result:  services.RecognitionResult{Status: services.StatusRecognized, Name: "alice"},
	}
	w := NewCaptureWorker(cam, rec, time.Millisecond)

	require.NoError(t, w.Start())
	cam.frames <- gocv.Mat{}
	<-rec.entered

	stopDone := make(chan struct{})
	go func() {
		w.Stop()
		close(stopDone)
	}()

	// let Stop reach the wait for the loop, then finish the slow frame
	time.Sleep(20 * time.Millisecond)
	close(rec.release)

	select {
	case <-stopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight recognition")
	}

	assert.False(t, w.IsRunning())
	last := w.LastResult()
	require.NotNil(t, last, "the in-flight result must still be published")
	assert.Equal(t, "alice", last.Name)
}

func TestNewCaptureWorkerDefaultInterval(t *testing.T) {
	w := NewCaptureWorker(newFakeLiveCamera(), &fixedRecognizer{}, 0)
	assert.Equal(t, time.Second, w.interval)
}
