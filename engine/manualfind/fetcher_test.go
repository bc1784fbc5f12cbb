package manualfind

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

func TestFetchAcceptsPDFContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not really pdf bytes"))
	}))
	defer ts.Close()

	f := NewFetcherWithClient(ts.Client())
	file, err := f.Fetch(context.Background(), ts.URL+"/manual.pdf", "Kitchen Fridge")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if file.Name != "Kitchen_Fridge_manual.pdf" {
		t.Errorf("Name = %q", file.Name)
	}
}

func TestFetchAcceptsPDFMagicWithoutContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("%PDF-1.7 rest of file"))
	}))
	defer ts.Close()

	f := NewFetcherWithClient(ts.Client())
	file, err := f.Fetch(context.Background(), ts.URL, "dryer")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(file.Bytes) == 0 {
		t.Error("empty body")
	}
}

func TestFetchRejectsNonPDF(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("Not a PDF"))
	}))
	defer ts.Close()

	f := NewFetcherWithClient(ts.Client())
	_, err := f.Fetch(context.Background(), ts.URL, "fridge")
	if !errors.Is(err, domain.ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	f := NewFetcherWithClient(ts.Client())
	if _, err := f.Fetch(context.Background(), ts.URL, "fridge"); err == nil {
		t.Error("expected error on 404")
	}
}
