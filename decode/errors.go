package decode

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrLostSync         = errors.New("lost synchronization")
	ErrInsufficientData = errors.New("insufficient data")
	ErrMalformedFrame   = errors.New("malformed frame")
)

// SyncError reports a buffer containing no sync marker.
type SyncError struct {
	Scanned int
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: marker 0x%02X not found in %d bytes", ErrLostSync, SyncMarker, e.Scanned)
}

func (e *SyncError) Cause() error  { return ErrLostSync }
func (e *SyncError) Unwrap() error { return ErrLostSync }

// InsufficientDataError reports an aligned buffer shorter than one frame.
type InsufficientDataError struct {
	Received int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d bytes after sync, need at least %d", ErrInsufficientData, e.Received, e.Required)
}

func (e *InsufficientDataError) Cause() error  { return ErrInsufficientData }
func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// FrameError reports a frame that doesn't reshape into the configured layout.
type FrameError struct {
	Index    int
	Length   int
	Expected int
	Channels int
}

func (e *FrameError) Error() string {
	if e.Channels != 0 {
		return fmt.Sprintf("%s: frame %d has %d bytes, expected %d for %d channels",
			ErrMalformedFrame, e.Index, e.Length, e.Expected, e.Channels,
		)
	}
	return fmt.Sprintf("%s: frame %d has %d bytes, expected %d", ErrMalformedFrame, e.Index, e.Length, e.Expected)
}

func (e *FrameError) Cause() error  { return ErrMalformedFrame }
func (e *FrameError) Unwrap() error { return ErrMalformedFrame }
