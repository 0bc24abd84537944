package media

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// fakeSource yields no frames; it only tracks whether it was released.
type fakeSource struct {
	closed atomic.Int32
}

func (f *fakeSource) Read(m *gocv.Mat) bool { return false }

func (f *fakeSource) Close() error {
	f.closed.Add(1)
	return nil
}

func newFakeCamera(source *fakeSource) *Camera {
	c := NewCamera(0, 100)
	c.open = func() (frameSource, error) { return source, nil }
	return c
}

func TestCameraStartStop(t *testing.T) {
	source := &fakeSource{}
	c := newFakeCamera(source)

	require.NoError(t, c.Start())
	assert.True(t, c.IsRunning())

	c.Stop()
	assert.False(t, c.IsRunning())
	assert.Equal(t, int32(1), source.closed.Load(), "the device must be released exactly once")
}

func TestCameraStartIsIdempotent(t *testing.T) {
	opens := 0
	c := NewCamera(0, 100)
	c.open = func() (frameSource, error) {
		opens++
		return &fakeSource{}, nil
	}

	require.NoError(t, c.Start())
	require.NoError(t, c.Start())
	assert.Equal(t, 1, opens, "a running camera must not be reopened")

	c.Stop()
}

func TestCameraStopWithoutStart(t *testing.T) {
	c := newFakeCamera(&fakeSource{})

	assert.NotPanics(t, func() { c.Stop() })
	assert.False(t, c.IsRunning())
}

func TestCameraDoubleStop(t *testing.T) {
	source := &fakeSource{}
	c := newFakeCamera(source)

	require.NoError(t, c.Start())
	c.Stop()
	assert.NotPanics(t, func() { c.Stop() })
	assert.Equal(t, int32(1), source.closed.Load())
}

func TestCameraRestartAfterStop(t *testing.T) {
	source := &fakeSource{}
	c := newFakeCamera(source)

	require.NoError(t, c.Start())
	c.Stop()

	require.NoError(t, c.Start())
	assert.True(t, c.IsRunning())
	c.Stop()
	assert.Equal(t, int32(2), source.closed.Load())
}

func TestCameraOpenFailure(t *testing.T) {
	c := NewCamera(0, 100)
	c.open = func() (frameSource, error) {
		return nil, errors.New("device busy")
	}

	err := c.Start()
	require.Error(t, err, "an open failure is reported once, at start")
	assert.False(t, c.IsRunning())
}

func TestCameraStopReleasesQuickly(t *testing.T) {
	c := newFakeCamera(&fakeSource{})
	require.NoError(t, c.Start())

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return in time")
	}
}
