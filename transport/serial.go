// Package transport reads fixed-size captures from the headset's serial
// port.
package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

var ErrPartialAcquisition = errors.New("partial acquisition")

// PartialError reports a capture that ended before the requested number of
// bytes arrived.
type PartialError struct {
	Requested int
	Received  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: received %d of %d bytes", ErrPartialAcquisition, e.Received, e.Requested)
}

func (e *PartialError) Cause() error  { return ErrPartialAcquisition }
func (e *PartialError) Unwrap() error { return ErrPartialAcquisition }

// Config describes the serial link.
type Config struct {
	Port      string
	Baud      int
	Timeout   time.Duration // bounds each read and the whole capture
	BlockSize int           // maximum bytes requested per read, 0 for no limit
}

func DefaultConfig() Config {
	return Config{
		Port:      "/dev/tty.sichiray-SPPDev",
		Baud:      57600,
		Timeout:   5 * time.Second,
		BlockSize: 15 * 56,
	}
}

func (cfg Config) String() string {
	return fmt.Sprintf("{Port:%s Baud:%d Timeout:%s BlockSize:%d}", cfg.Port, cfg.Baud, cfg.Timeout, cfg.BlockSize)
}

// Serial is an open serial port.
type Serial struct {
	*serial.Port
	Cfg Config
}

func Open(cfg Config) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Port)
	}

	return &Serial{Port: port, Cfg: cfg}, nil
}

// Acquire reads n bytes from the port, see Acquire.
func (s *Serial) Acquire(n int) ([]byte, error) {
	return Acquire(s.Port, n, s.Cfg.BlockSize, s.Cfg.Timeout)
}

// Acquire reads up to n bytes from r, at most blockSize bytes per call. It
// stops early when a read returns nothing, r is exhausted, or timeout has
// elapsed since the first read. The returned slice holds exactly the bytes
// received; if that is fewer than n the error is a *PartialError.
func Acquire(r io.Reader, n, blockSize int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	received := 0
	for received < n {
		end := n
		if blockSize > 0 && received+blockSize < n {
			end = received + blockSize
		}

		m, err := r.Read(buf[received:end])
		received += m

		logrus.WithFields(logrus.Fields{
			"read":      m,
			"received":  received,
			"requested": n,
		}).Debug("block")

		if err == io.EOF || (m == 0 && err == nil) {
			break
		}
		if err != nil {
			return buf[:received], errors.Wrapf(err, "read after %d of %d bytes", received, n)
		}
		if !deadline.IsZero() && received < n && time.Now().After(deadline) {
			break
		}
	}

	if received < n {
		return buf[:received], &PartialError{Requested: n, Received: received}
	}

	return buf, nil
}
