// EEGACQ - Acquires and decodes EEG headset captures over a serial link.
// Copyright (C) 2014 The eegacq Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/bemasher/eegacq/convert"
	"github.com/bemasher/eegacq/csv"
	"github.com/bemasher/eegacq/decode"
	"github.com/bemasher/eegacq/gen"
	"github.com/bemasher/eegacq/transport"
)

// Number of garbage bytes the simulated source emits before its first frame.
const simulatedGarbage = 3

// StageError identifies the pipeline stage a run failed in along with how
// many bytes had been seen at that point.
type StageError struct {
	Stage     string
	Requested int
	Stats     decode.Stats
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Cause() error  { return e.Err }
func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Fields() log.Fields {
	return log.Fields{
		"stage":     e.Stage,
		"requested": e.Requested,
		"received":  e.Stats.Received,
		"skipped":   e.Stats.Skipped,
		"frames":    e.Stats.Frames,
	}
}

// Result summarizes a successful run.
type Result struct {
	Stats       decode.Stats
	Samples     *mat.Dense
	CollectTime time.Duration
	TotalTime   time.Duration
}

// SampleRate is the observed number of time points per second of
// collection. It is for diagnostics only.
func (r Result) SampleRate() float64 {
	if r.CollectTime <= 0 {
		return 0
	}
	return float64(r.Stats.Frames) / r.CollectTime.Seconds()
}

type Acquisition struct {
	Cfg Config
	dec decode.Decoder
}

func NewAcquisition(cfg Config) (*Acquisition, error) {
	dec, err := decode.NewDecoder(cfg.Frame)
	if err != nil {
		return nil, err
	}
	return &Acquisition{Cfg: cfg, dec: dec}, nil
}

// Open returns the configured byte source.
func (a *Acquisition) Open() (io.ReadCloser, error) {
	switch {
	case a.Cfg.Input != "":
		return os.Open(a.Cfg.Input)
	case a.Cfg.Simulate:
		return ioutil.NopCloser(gen.NewSource(time.Now().UnixNano(), a.Cfg.Frame, simulatedGarbage)), nil
	default:
		return transport.Open(a.Cfg.Serial)
	}
}

// Run performs a single acquisition: it reads the requested number of bytes,
// decodes them and writes the microvolt table. Either the whole table is
// written or nothing is.
func (a *Acquisition) Run() (res Result, err error) {
	start := time.Now()

	src, err := a.Open()
	if err != nil {
		return res, &StageError{Stage: "open", Requested: a.Cfg.Bytes(), Err: err}
	}

	collectStart := time.Now()
	buf, err := transport.Acquire(src, a.Cfg.Bytes(), a.Cfg.Serial.BlockSize, a.Cfg.Serial.Timeout)
	res.CollectTime = time.Since(collectStart)
	src.Close()

	log.WithFields(log.Fields{
		"elapsed": res.CollectTime,
		"bytes":   len(buf),
	}).Info("collected")

	if dumpErr := a.dump(buf); dumpErr != nil {
		log.WithError(dumpErr).Warn("writing sample file")
	}

	if err != nil {
		return res, &StageError{
			Stage:     "acquire",
			Requested: a.Cfg.Bytes(),
			Stats:     decode.Stats{Received: len(buf)},
			Err:       err,
		}
	}

	res.Stats, res.Samples, err = a.Process(buf)
	if err != nil {
		return res, err
	}

	res.TotalTime = time.Since(start)

	return res, nil
}

// Process decodes buf and writes the resulting table to the output file.
func (a *Acquisition) Process(buf []byte) (decode.Stats, *mat.Dense, error) {
	codes, stats, err := a.dec.Decode(buf)
	if err != nil {
		return stats, nil, &StageError{Stage: "decode", Requested: a.Cfg.Bytes(), Stats: stats, Err: err}
	}

	log.WithFields(log.Fields{
		"time_points":           a.Cfg.TimePoints,
		"collected_time_points": stats.Frames,
		"skipped":               stats.Skipped,
		"dropped":               stats.Dropped,
	}).Info("decoded")

	samples := convert.Microvolts(codes)

	if err := csv.WriteFile(a.Cfg.Output, samples); err != nil {
		return stats, nil, &StageError{
			Stage:     "write",
			Requested: a.Cfg.Bytes(),
			Stats:     stats,
			Err:       errors.Wrap(err, a.Cfg.Output),
		}
	}

	return stats, samples, nil
}

func (a *Acquisition) dump(buf []byte) error {
	if a.Cfg.SampleFile == "" || a.Cfg.SampleFile == os.DevNull {
		return nil
	}
	return ioutil.WriteFile(a.Cfg.SampleFile, buf, 0644)
}
