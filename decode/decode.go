package decode

import (
	"bytes"
	"fmt"
)

// SyncMarker is the byte every frame starts with. It only anchors alignment
// and carries no payload meaning.
const SyncMarker = 0xAA

// FrameConfig specifies the fixed layout of a frame.
type FrameConfig struct {
	FrameLength  int
	PrefixLength int
	ChannelCount int
	ChannelWidth int
}

// DefaultFrameConfig returns the layout emitted by the headset: 8 bytes of
// metadata followed by 16 channels of 24-bit big-endian samples.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		FrameLength:  56,
		PrefixLength: 8,
		ChannelCount: 16,
		ChannelWidth: 3,
	}
}

// PayloadLength is the number of bytes following the metadata prefix.
func (cfg FrameConfig) PayloadLength() int {
	return cfg.ChannelCount * cfg.ChannelWidth
}

// Validate checks the layout is self-consistent.
func (cfg FrameConfig) Validate() error {
	if cfg.ChannelWidth < 1 || cfg.ChannelWidth > 4 {
		return fmt.Errorf("channel width must be between 1 and 4 bytes: %d", cfg.ChannelWidth)
	}
	if cfg.ChannelCount < 1 || cfg.PrefixLength < 1 {
		return fmt.Errorf("invalid frame layout: %+v", cfg)
	}
	if cfg.FrameLength != cfg.PrefixLength+cfg.PayloadLength() {
		return fmt.Errorf("frame length %d does not match prefix %d + payload %d",
			cfg.FrameLength, cfg.PrefixLength, cfg.PayloadLength(),
		)
	}
	return nil
}

func (cfg FrameConfig) String() string {
	return fmt.Sprintf("{FrameLength:%d PrefixLength:%d ChannelCount:%d ChannelWidth:%d}",
		cfg.FrameLength, cfg.PrefixLength, cfg.ChannelCount, cfg.ChannelWidth,
	)
}

// A Frame is one time point's worth of bytes, starting with the sync marker.
type Frame struct {
	data   []byte
	prefix int
}

// Meta returns the metadata prefix. Its layout is undocumented, so it is
// handed back untouched.
func (f Frame) Meta() []byte {
	return f.data[:f.prefix]
}

// Payload returns the channel groups following the metadata prefix.
func (f Frame) Payload() []byte {
	return f.data[f.prefix:]
}

// Bytes returns the whole frame.
func (f Frame) Bytes() []byte {
	return f.data
}

func (f Frame) Len() int {
	return len(f.data)
}

// Sync returns buf starting at the first sync marker.
func Sync(buf []byte) ([]byte, error) {
	idx := bytes.IndexByte(buf, SyncMarker)
	if idx == -1 {
		return nil, &SyncError{Scanned: len(buf)}
	}

	return buf[idx:], nil
}

// Segment cuts an aligned buffer into whole frames. Trailing bytes that don't
// make up a full frame are dropped. A lost or extra byte anywhere shifts every
// following frame, there is no resynchronization.
func Segment(buf []byte, cfg FrameConfig) ([]Frame, error) {
	count := len(buf) / cfg.FrameLength
	if count == 0 {
		return nil, &InsufficientDataError{Received: len(buf), Required: cfg.FrameLength}
	}

	frames := make([]Frame, count)
	for idx := range frames {
		offset := idx * cfg.FrameLength
		frames[idx] = Frame{
			data:   buf[offset : offset+cfg.FrameLength],
			prefix: cfg.PrefixLength,
		}
	}

	return frames, nil
}

// Channels reconstructs each channel's value from its big-endian byte group
// and stores the results in dst, which must hold cfg.ChannelCount values.
func Channels(frame Frame, cfg FrameConfig, dst []uint32) error {
	if frame.Len() != cfg.FrameLength {
		return &FrameError{Length: frame.Len(), Expected: cfg.FrameLength}
	}

	payload := frame.Payload()
	if len(payload) != cfg.PayloadLength() || len(dst) != cfg.ChannelCount {
		return &FrameError{Length: frame.Len(), Expected: cfg.FrameLength, Channels: len(dst)}
	}

	for ch := range dst {
		var v uint32
		for _, b := range payload[ch*cfg.ChannelWidth : (ch+1)*cfg.ChannelWidth] {
			v = v<<8 | uint32(b)
		}
		dst[ch] = v
	}

	return nil
}
