//go:build !tinygo

package bustap

import (
	"io"
	"testing"
)

// chunkReader yields its payload in fixed-size chunks to exercise split
// words across reads.
type chunkReader struct {
	data  []byte
	chunk int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func (r *chunkReader) Close() error { return nil }

func readAll(t *testing.T, tap *Tap) []uint16 {
	t.Helper()
	var out []uint16
	buf := make([]uint16, 4)
	for {
		n, err := tap.ReadWords(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadWords: %v", err)
		}
	}
}

func TestReadWordsLittleEndian(t *testing.T) {
	tcs := []struct {
		name  string
		chunk int
	}{
		{"whole stream at once", 64},
		{"one byte at a time", 1},
		{"odd chunks split words", 3},
	}
	data := []byte{0xCD, 0xAB, 0x01, 0x00, 0x34, 0x12}
	want := []uint16{0xABCD, 0x0001, 0x1234}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			tap := NewTap(&chunkReader{data: append([]byte(nil), data...), chunk: tc.chunk})
			got := readAll(t, tap)
			if len(got) != len(want) {
				t.Fatalf("got %d words, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("word %d = %04x, want %04x", i, got[i], want[i])
				}
			}
		})
	}
}

func TestReadWordsRespectsDstCapacity(t *testing.T) {
	data := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}
	tap := NewTap(&chunkReader{data: data, chunk: 64})

	dst := make([]uint16, 2)
	n, err := tap.ReadWords(dst)
	if err != nil || n != 2 {
		t.Fatalf("first read = (%d,%v), want (2,nil)", n, err)
	}
	n, err = tap.ReadWords(dst)
	if err != nil || n != 1 {
		t.Fatalf("second read = (%d,%v), want (1,nil)", n, err)
	}
	if dst[0] != 0x0003 {
		t.Fatalf("leftover word = %04x, want 0003", dst[0])
	}
}
