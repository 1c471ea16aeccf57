package decode

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Codes holds raw channel values, one row per frame, row-major.
type Codes struct {
	Rows, Cols int
	Data       []uint32
}

func NewCodes(rows, cols int) Codes {
	return Codes{
		Rows: rows,
		Cols: cols,
		Data: make([]uint32, rows*cols),
	}
}

func (c Codes) At(row, col int) uint32 {
	return c.Data[row*c.Cols+col]
}

// Row returns a view of the values decoded from a single frame.
func (c Codes) Row(row int) []uint32 {
	return c.Data[row*c.Cols : (row+1)*c.Cols]
}

// Stats describes how a buffer was consumed.
type Stats struct {
	Received int // bytes handed to the decoder
	Skipped  int // bytes discarded before the first sync marker
	Frames   int
	Dropped  int // trailing bytes not making up a whole frame
}

func (s Stats) String() string {
	return fmt.Sprintf("{Received:%d Skipped:%d Frames:%d Dropped:%d}", s.Received, s.Skipped, s.Frames, s.Dropped)
}

// Decoder runs synchronization, segmentation and channel decoding over a
// single buffer.
type Decoder struct {
	Cfg FrameConfig
}

func NewDecoder(cfg FrameConfig) (Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return Decoder{}, errors.Wrap(err, "frame config")
	}
	return Decoder{Cfg: cfg}, nil
}

func (d Decoder) Log() {
	logrus.WithFields(logrus.Fields{
		"FrameLength":  d.Cfg.FrameLength,
		"PrefixLength": d.Cfg.PrefixLength,
		"ChannelCount": d.Cfg.ChannelCount,
		"ChannelWidth": d.Cfg.ChannelWidth,
	}).Info("decoder")
}

// Decode aligns buf on the first sync marker, cuts it into frames and
// returns every frame's channel values. The returned Stats are valid up to
// the stage that failed.
func (d Decoder) Decode(buf []byte) (codes Codes, stats Stats, err error) {
	stats.Received = len(buf)

	aligned, err := Sync(buf)
	if err != nil {
		return codes, stats, err
	}
	stats.Skipped = len(buf) - len(aligned)

	frames, err := Segment(aligned, d.Cfg)
	if err != nil {
		return codes, stats, err
	}
	stats.Frames = len(frames)
	stats.Dropped = len(aligned) - len(frames)*d.Cfg.FrameLength

	logrus.WithFields(logrus.Fields{
		"meta":  hex.EncodeToString(frames[0].Meta()),
		"stats": stats,
	}).Debug("segmented")

	codes = NewCodes(len(frames), d.Cfg.ChannelCount)
	for idx, frame := range frames {
		if err := Channels(frame, d.Cfg, codes.Row(idx)); err != nil {
			if fErr, ok := err.(*FrameError); ok {
				fErr.Index = idx
			}
			return Codes{}, stats, err
		}
	}

	return codes, stats, nil
}
