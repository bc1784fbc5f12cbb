// Package pdftext extracts plain text from PDF manuals. A layout-aware
// MuPDF extraction runs first with a simpler parser as fallback; corrupt
// or scanned PDFs produce an empty string, never an error.
package pdftext

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/UpkeepAI/upkeep-mvp/pkg/fn"
	fitz "github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
)

// Extract pulls text from raw PDF bytes. Pages yielding no text
// contribute nothing (not a blank line). The fallback extractor only
// runs when the primary one errors; both failing yields "".
func Extract(ctx context.Context, data []byte) string {
	result := fn.First(ctx,
		func(context.Context) fn.Result[string] {
			return fn.FromPair(extractLayout(data))
		},
		func(context.Context) fn.Result[string] {
			return fn.FromPair(extractPlain(data))
		},
	)
	return result.UnwrapOr("")
}

// ExtractReader extracts from any rewindable reader (uploaded file,
// buffered download). The reader is rewound before use.
func ExtractReader(ctx context.Context, r io.ReadSeeker) string {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return Extract(ctx, data)
}

// extractLayout is the primary, layout-aware strategy (MuPDF).
func extractLayout(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// extractPlain is the fallback strategy: direct content-stream text.
func extractPlain(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
