package csv

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

// Produces a list of fields making up a record.
type Recorder interface {
	Record() []string
}

// An Encoder writes CSV records to an output stream.
type Encoder struct {
	w *csv.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: csv.NewWriter(w)}
}

// Encode writes a CSV record representing v to the stream followed by a
// newline character. Value given must implement the Recorder interface.
func (enc *Encoder) Encode(v interface{}) (err error) {
	defer func() {
		if r, _ := recover().(error); r != nil {
			err = xerrors.Errorf("recovered: %w", r)
		}
	}()

	if err = enc.w.Write(v.(Recorder).Record()); err != nil {
		return xerrors.Errorf("write record: %w", err)
	}
	enc.w.Flush()

	return enc.w.Error()
}

// A Row is one time point, one microvolt value per channel.
type Row []float64

// Record formats values the way numpy's savetxt does by default so existing
// EEGLAB/BCILAB import settings keep working.
func (row Row) Record() (r []string) {
	for _, v := range row {
		r = append(r, strconv.FormatFloat(v, 'e', 18, 64))
	}
	return r
}

// WriteMatrix writes one unlabeled row per matrix row.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	enc := NewEncoder(w)

	rows, cols := m.Dims()
	row := make(Row, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, m)
		if err := enc.Encode(row); err != nil {
			return xerrors.Errorf("row %d: %w", i, err)
		}
	}

	return nil
}

// WriteFile writes m to filename. Rows go to a temporary file in the same
// directory which replaces filename only once everything was written, so a
// failed write never leaves a truncated table behind.
func WriteFile(filename string, m mat.Matrix) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return xerrors.Errorf("create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0644); err != nil {
		return xerrors.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	if err = WriteMatrix(tmp, m); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err = os.Rename(tmp.Name(), filename); err != nil {
		return xerrors.Errorf("rename %s: %w", tmp.Name(), err)
	}

	return nil
}
