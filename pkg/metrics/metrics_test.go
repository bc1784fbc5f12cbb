package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("jobs_total", "Jobs processed")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("counter = %d", c.Value())
	}
	if r.Counter("jobs_total", "") != c {
		t.Error("second lookup returned a different counter")
	}

	g := r.Gauge("queue_depth", "Queue depth")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 9 {
		t.Errorf("gauge = %d", g.Value())
	}
}

func TestRenderCounterFormat(t *testing.T) {
	r := New()
	r.Counter("requests_total", "Total requests").Add(3)

	out := r.Render()
	for _, want := range []string{
		"# HELP requests_total Total requests\n",
		"# TYPE requests_total counter\n",
		"requests_total 3\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLabeledSeries(t *testing.T) {
	r := New()
	r.Counter(WithLabels("fetches_total", "source", "brand_site"), "Manual fetches").Inc()
	r.Counter(WithLabels("fetches_total", "source", "web_search"), "").Add(2)

	out := r.Render()
	if strings.Count(out, "# TYPE fetches_total counter") != 1 {
		t.Errorf("TYPE line not shared across series:\n%s", out)
	}
	if !strings.Contains(out, `fetches_total{source="brand_site"} 1`) {
		t.Errorf("missing labeled series:\n%s", out)
	}
	if !strings.Contains(out, `fetches_total{source="web_search"} 2`) {
		t.Errorf("missing labeled series:\n%s", out)
	}
	// Series sorted by label set.
	if strings.Index(out, "brand_site") > strings.Index(out, "web_search") {
		t.Error("series not sorted")
	}
}

func TestRenderHistogram(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "Request latency", []float64{1, 0.5, 0.1})
	h.Observe(0.05)
	h.Observe(0.3)
	h.Observe(0.7)
	h.Observe(9)

	out := r.Render()
	for _, want := range []string{
		"# TYPE latency_seconds histogram\n",
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="0.5"} 2`,
		`latency_seconds_bucket{le="1"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		"latency_seconds_count 4\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "latency_seconds_sum 10.05\n") {
		t.Errorf("sum line wrong:\n%s", out)
	}
}

func TestRegistrationOrderPreserved(t *testing.T) {
	r := New()
	r.Counter("b_metric", "")
	r.Counter("a_metric", "")

	out := r.Render()
	if strings.Index(out, "b_metric") > strings.Index(out, "a_metric") {
		t.Error("base names not in registration order")
	}
}

func TestWithLabels(t *testing.T) {
	if got := WithLabels("m", "k", "v"); got != `m{k="v"}` {
		t.Errorf("WithLabels = %q", got)
	}
	if got := WithLabels("m", "a", "1", "b", "2"); got != `m{a="1",b="2"}` {
		t.Errorf("WithLabels = %q", got)
	}
	if got := WithLabels("m"); got != "m" {
		t.Errorf("no labels = %q", got)
	}
	if got := WithLabels("m", "dangling"); got != "m" {
		t.Errorf("odd pair count = %q", got)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("up", "").Inc()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "up 1\n") {
		t.Errorf("body = %q", body)
	}
}
