package pdftext

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestExtractGarbageYieldsEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"html", []byte("<html><body>not found</body></html>")},
		{"truncated header", []byte("%PDF-1.4")},
		{"binary junk", []byte{0x00, 0xff, 0x13, 0x37, 0x00, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(context.Background(), tt.data); got != "" {
				t.Errorf("Extract = %q, want empty", got)
			}
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	data := []byte("%PDF-1.4 damaged beyond repair")
	first := Extract(context.Background(), data)
	second := Extract(context.Background(), data)
	if first != second {
		t.Errorf("extractions differ: %q vs %q", first, second)
	}
}

func TestExtractReaderRewinds(t *testing.T) {
	data := []byte("definitely not a pdf")
	r := bytes.NewReader(data)
	// Advance the reader; ExtractReader must rewind before reading.
	io.CopyN(io.Discard, r, 5)
	if got := ExtractReader(context.Background(), r); got != "" {
		t.Errorf("ExtractReader = %q", got)
	}
	if r.Len() != 0 {
		t.Errorf("reader not fully consumed, %d bytes left", r.Len())
	}
}

type brokenSeeker struct{}

func (brokenSeeker) Read([]byte) (int, error)       { return 0, errors.New("read failed") }
func (brokenSeeker) Seek(int64, int) (int64, error) { return 0, errors.New("seek failed") }

func TestExtractReaderSeekFailure(t *testing.T) {
	if got := ExtractReader(context.Background(), brokenSeeker{}); got != "" {
		t.Errorf("ExtractReader = %q", got)
	}
}
