// Package ocr extracts text from appliance label photographs. A
// multi-language Tesseract binding runs first, with a plain tesseract
// CLI invocation as fallback; total failure yields an empty string,
// never an error. Backend availability is resolved once at startup and
// injected as an explicit Capabilities value.
package ocr

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Capabilities describes which OCR backends this process can use.
// Resolve once with Detect at startup and pass to NewExtractor; logic
// never consults globals.
type Capabilities struct {
	// Binding is true when the linked Tesseract library is usable.
	Binding bool
	// CLI is true when a tesseract binary is on PATH.
	CLI bool
}

// Available reports whether any backend can run.
func (c Capabilities) Available() bool { return c.Binding || c.CLI }

// Detect probes the process environment for usable OCR backends.
func Detect() Capabilities {
	caps := Capabilities{}

	func() {
		defer func() { _ = recover() }()
		client := gosseract.NewClient()
		defer client.Close()
		if _, err := client.GetAvailableLanguages(); err == nil {
			caps.Binding = true
		}
	}()

	if _, err := exec.LookPath("tesseract"); err == nil {
		caps.CLI = true
	}
	return caps
}

// DefaultLanguages are the language models the primary backend loads.
var DefaultLanguages = []string{"eng"}

// Extractor extracts text from label images.
type Extractor struct {
	caps   Capabilities
	langs  []string
	logger *slog.Logger
}

// NewExtractor creates an Extractor over the detected capabilities.
func NewExtractor(caps Capabilities, langs []string, logger *slog.Logger) *Extractor {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{caps: caps, langs: langs, logger: logger}
}

// Extract runs OCR over the image bytes. The binding backend's line
// fragments are joined with single spaces; when it errors or yields
// nothing the CLI backend runs with its default language model. With no
// backend available the result is "".
func (e *Extractor) Extract(ctx context.Context, image []byte) string {
	if len(image) == 0 {
		return ""
	}

	if e.caps.Binding {
		if text := e.extractBinding(image); text != "" {
			return text
		}
		e.logger.Debug("binding ocr yielded nothing, trying cli")
	}

	if e.caps.CLI {
		return e.extractCLI(ctx, image)
	}

	return ""
}

func (e *Extractor) extractBinding(image []byte) (text string) {
	// The cgo binding can panic on corrupt input; treat that as an
	// empty result like any other failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.langs...); err != nil {
		return ""
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return ""
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil || len(boxes) == 0 {
		// Line detection failed; fall back to whole-image text.
		whole, err := client.Text()
		if err != nil {
			return ""
		}
		return strings.Join(strings.Fields(whole), " ")
	}

	var fragments []string
	for _, b := range boxes {
		if w := strings.TrimSpace(b.Word); w != "" {
			fragments = append(fragments, w)
		}
	}
	return strings.Join(fragments, " ")
}

func (e *Extractor) extractCLI(ctx context.Context, image []byte) string {
	tmp, err := os.CreateTemp("", "upkeep-label-*")
	if err != nil {
		return ""
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return ""
	}
	tmp.Close()

	out, err := exec.CommandContext(ctx, "tesseract", tmp.Name(), "stdout").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
