//go:build !tinygo

// Package bustap reads bus event words from a serial capture device so the
// host build can replay traffic recorded on real hardware.
package bustap

import (
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// Config selects the capture device.
type Config struct {
	Port string
	Baud uint
}

// Tap decodes a byte stream into little-endian 16-bit bus words.
type Tap struct {
	rc  io.ReadCloser
	buf [256]byte
	// pending holds the dangling low byte of a split word.
	pending    byte
	hasPending bool
}

// Open attaches to a serial capture port.
func Open(cfg Config) (*Tap, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("bustap: no port")
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = 115200
	}
	rc, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.Port,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("bustap: open %s: %w", cfg.Port, err)
	}
	return &Tap{rc: rc}, nil
}

// NewTap wraps an arbitrary stream, used for file replay and tests.
func NewTap(rc io.ReadCloser) *Tap { return &Tap{rc: rc} }

// ReadWords fills dst with as many complete words as one read yields and
// returns the count. A low byte without its high byte is kept for the next
// call. Returns 0, io.EOF at end of stream.
func (t *Tap) ReadWords(dst []uint16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	// Never read more bytes than dst can absorb as words.
	limit := len(dst) * 2
	if t.hasPending {
		limit--
	}
	if limit > len(t.buf) {
		limit = len(t.buf)
	}
	for {
		n, err := t.rc.Read(t.buf[:limit])
		if n > 0 {
			words := 0
			for i := 0; i < n && words < len(dst); i++ {
				b := t.buf[i]
				if t.hasPending {
					dst[words] = uint16(t.pending) | uint16(b)<<8
					words++
					t.hasPending = false
				} else {
					t.pending = b
					t.hasPending = true
				}
			}
			if words > 0 {
				return words, nil
			}
		}
		if err != nil {
			return 0, err
		}
	}
}

func (t *Tap) Close() error { return t.rc.Close() }
