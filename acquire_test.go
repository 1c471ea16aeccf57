package main

import (
	"bytes"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/bemasher/eegacq/convert"
	"github.com/bemasher/eegacq/decode"
	"github.com/bemasher/eegacq/gen"
	"github.com/bemasher/eegacq/transport"
)

func newTestAcquisition(t *testing.T, timePoints int, input []byte) *Acquisition {
	t.Helper()

	dir := t.TempDir()

	cfg := NewDefaultConfig()
	cfg.TimePoints = timePoints
	cfg.Output = filepath.Join(dir, "data.csv")
	cfg.Serial.Timeout = time.Second

	if input != nil {
		cfg.Input = filepath.Join(dir, "capture.bin")
		if err := ioutil.WriteFile(cfg.Input, input, 0644); err != nil {
			t.Fatal(err)
		}
	}

	acq, err := NewAcquisition(cfg)
	if err != nil {
		t.Fatal(err)
	}

	return acq
}

func readTable(t *testing.T, filename string) (table [][]float64) {
	t.Helper()

	data, err := ioutil.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		var row []float64
		for _, field := range strings.Split(line, ",") {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				t.Fatal(err)
			}
			row = append(row, v)
		}
		table = append(table, row)
	}

	return table
}

func TestProcess(t *testing.T) {
	acq := newTestAcquisition(t, 1, nil)

	buf := []byte{0x01, 0x02, 0x03, decode.SyncMarker, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16}
	for ch := 0; ch < 16; ch++ {
		buf = append(buf, 0x00, 0x00, 0x01)
	}

	stats, samples, err := acq.Process(buf)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Frames != 1 || stats.Skipped != 3 || stats.Dropped != 0 {
		t.Fatalf("unexpected stats: %s\n", stats)
	}

	if rows, cols := samples.Dims(); rows != 1 || cols != 16 {
		t.Fatalf("Expected [1,16] got [%d,%d]\n", rows, cols)
	}

	table := readTable(t, acq.Cfg.Output)
	if len(table) != 1 || len(table[0]) != 16 {
		t.Fatalf("Expected 1 row of 16 columns got %d rows\n", len(table))
	}

	expt := convert.Code(1)
	for col, v := range table[0] {
		if v != expt {
			t.Fatalf("column %d: expected %v got %v\n", col, expt, v)
		}
	}
}

func TestRunReplay(t *testing.T) {
	cfg := decode.DefaultFrameConfig()
	rng := rand.New(rand.NewSource(1))

	s := gen.NewStream(rng, cfg, 3, 3, 0)
	acq := newTestAcquisition(t, 3, s.Bytes)

	res, err := acq.Run()
	if err != nil {
		t.Fatal(err)
	}

	// The leading garbage eats into the requested length, costing a frame.
	if res.Stats.Frames != 2 || res.Stats.Dropped != cfg.FrameLength-3 {
		t.Fatalf("unexpected stats: %s\n", res.Stats)
	}

	table := readTable(t, acq.Cfg.Output)
	if len(table) != 2 {
		t.Fatalf("Expected 2 rows got %d\n", len(table))
	}

	for row := range table {
		for col, v := range table[row] {
			if expt := convert.Code(s.Values[row][col]); v != expt {
				t.Fatalf("[%d,%d]: expected %v got %v\n", row, col, expt, v)
			}
		}
	}
}

func TestRunPartial(t *testing.T) {
	acq := newTestAcquisition(t, 5, make([]byte, 100))

	_, err := acq.Run()
	if errors.Cause(err) != transport.ErrPartialAcquisition {
		t.Fatalf("Expected %v got %v\n", transport.ErrPartialAcquisition, err)
	}

	stageErr, ok := err.(*StageError)
	if !ok || stageErr.Stage != "acquire" {
		t.Fatalf("Expected acquire stage error got %+v\n", err)
	}
	if stageErr.Requested != 5*56 || stageErr.Stats.Received != 100 {
		t.Fatalf("unexpected byte counts: %+v\n", stageErr.Fields())
	}

	if _, err := os.Stat(acq.Cfg.Output); !os.IsNotExist(err) {
		t.Fatalf("Expected no output file, got %v\n", err)
	}
}

func TestRunLostSync(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	acq := newTestAcquisition(t, 2, gen.Garbage(rng, 2*56))

	_, err := acq.Run()
	if errors.Cause(err) != decode.ErrLostSync {
		t.Fatalf("Expected %v got %v\n", decode.ErrLostSync, err)
	}

	if stageErr := err.(*StageError); stageErr.Stage != "decode" {
		t.Fatalf("Expected decode stage got %q\n", stageErr.Stage)
	}

	if _, err := os.Stat(acq.Cfg.Output); !os.IsNotExist(err) {
		t.Fatalf("Expected no output file, got %v\n", err)
	}
}

func TestRunInsufficient(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	input := append(gen.Garbage(rng, 40), decode.SyncMarker)
	input = append(input, make([]byte, 15)...)

	acq := newTestAcquisition(t, 1, input)

	_, err := acq.Run()
	if errors.Cause(err) != decode.ErrInsufficientData {
		t.Fatalf("Expected %v got %v\n", decode.ErrInsufficientData, err)
	}
}

func TestRunMissingInput(t *testing.T) {
	acq := newTestAcquisition(t, 1, nil)
	acq.Cfg.Input = filepath.Join(t.TempDir(), "missing.bin")

	_, err := acq.Run()
	if stageErr, ok := err.(*StageError); !ok || stageErr.Stage != "open" {
		t.Fatalf("Expected open stage error got %v\n", err)
	}
}

func TestRunSimulate(t *testing.T) {
	acq := newTestAcquisition(t, 10, nil)
	acq.Cfg.Simulate = true

	res, err := acq.Run()
	if err != nil {
		t.Fatal(err)
	}

	if res.Stats.Skipped != simulatedGarbage || res.Stats.Frames != 9 {
		t.Fatalf("unexpected stats: %s\n", res.Stats)
	}

	if table := readTable(t, acq.Cfg.Output); len(table) != 9 {
		t.Fatalf("Expected 9 rows got %d\n", len(table))
	}
}

func TestRunSampleFile(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	s := gen.NewStream(rng, decode.DefaultFrameConfig(), 2, 0, 0)

	acq := newTestAcquisition(t, 2, s.Bytes)
	acq.Cfg.SampleFile = filepath.Join(t.TempDir(), "dump.bin")

	if _, err := acq.Run(); err != nil {
		t.Fatal(err)
	}

	dump, err := ioutil.ReadFile(acq.Cfg.SampleFile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dump, s.Bytes) {
		t.Fatal("sample file differs from the bytes received")
	}
}

func TestSampleRate(t *testing.T) {
	res := Result{Stats: decode.Stats{Frames: 30}, CollectTime: 15 * time.Second}
	if rate := res.SampleRate(); rate != 2 {
		t.Fatalf("Expected 2 Hz got %f\n", rate)
	}

	if rate := (Result{}).SampleRate(); rate != 0 {
		t.Fatalf("Expected 0 Hz got %f\n", rate)
	}
}
