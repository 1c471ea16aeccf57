package gen

import (
	"fmt"
	"math/rand"

	"github.com/bemasher/eegacq/decode"
)

// MaxCode is the largest value a 24-bit channel can carry.
const MaxCode = 1<<24 - 1

// NewFrame builds a frame from the given metadata and channel values. The
// first metadata byte is always replaced by the sync marker.
func NewFrame(cfg decode.FrameConfig, meta []byte, values []uint32) ([]byte, error) {
	if len(values) != cfg.ChannelCount {
		return nil, fmt.Errorf("expected %d channel values, got %d", cfg.ChannelCount, len(values))
	}
	if len(meta) > cfg.PrefixLength {
		return nil, fmt.Errorf("metadata longer than prefix: %d > %d", len(meta), cfg.PrefixLength)
	}

	frame := make([]byte, cfg.FrameLength)
	copy(frame, meta)
	frame[0] = decode.SyncMarker

	payload := frame[cfg.PrefixLength:]
	for ch, v := range values {
		group := payload[ch*cfg.ChannelWidth : (ch+1)*cfg.ChannelWidth]
		for idx := len(group) - 1; idx >= 0; idx-- {
			group[idx] = byte(v)
			v >>= 8
		}
	}

	return frame, nil
}

// NewRandFrame builds a frame with random metadata and channel values,
// returning both the frame and the values encoded in it.
func NewRandFrame(rng *rand.Rand, cfg decode.FrameConfig) (frame []byte, values []uint32) {
	limit := int64(1) << uint(8*cfg.ChannelWidth)

	values = make([]uint32, cfg.ChannelCount)
	for idx := range values {
		values[idx] = uint32(rng.Int63n(limit))
	}

	meta := make([]byte, cfg.PrefixLength)
	rng.Read(meta)

	frame, err := NewFrame(cfg, meta, values)
	if err != nil {
		panic(err)
	}

	return frame, values
}

// Garbage returns n random bytes, none of which is a sync marker.
func Garbage(rng *rand.Rand, n int) []byte {
	buf := make([]byte, n)
	for idx := range buf {
		for buf[idx] = byte(rng.Intn(256)); buf[idx] == decode.SyncMarker; {
			buf[idx] = byte(rng.Intn(256))
		}
	}
	return buf
}

// Stream is a generated capture: leading garbage, whole frames, then a
// partial trailing frame.
type Stream struct {
	Bytes  []byte
	Values [][]uint32
}

func NewStream(rng *rand.Rand, cfg decode.FrameConfig, frames, garbage, trailing int) (s Stream) {
	s.Bytes = append(s.Bytes, Garbage(rng, garbage)...)

	for idx := 0; idx < frames; idx++ {
		frame, values := NewRandFrame(rng, cfg)
		s.Bytes = append(s.Bytes, frame...)
		s.Values = append(s.Values, values)
	}

	if trailing > 0 {
		frame, _ := NewRandFrame(rng, cfg)
		s.Bytes = append(s.Bytes, frame[:trailing%cfg.FrameLength]...)
	}

	return
}

// Source is an endless stream of random frames preceded by a few garbage
// bytes, standing in for a headset when no hardware is attached.
type Source struct {
	rng     *rand.Rand
	cfg     decode.FrameConfig
	pending []byte
}

func NewSource(seed int64, cfg decode.FrameConfig, garbage int) *Source {
	rng := rand.New(rand.NewSource(seed))
	return &Source{
		rng:     rng,
		cfg:     cfg,
		pending: Garbage(rng, garbage),
	}
}

func (src *Source) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(src.pending) == 0 {
			src.pending, _ = NewRandFrame(src.rng, src.cfg)
		}
		copied := copy(p[n:], src.pending)
		src.pending = src.pending[copied:]
		n += copied
	}
	return n, nil
}
