package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Render produces the Prometheus text exposition format output. Base
// names appear in registration order, series within a base name sorted
// by label set.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, base := range r.order {
		typ := r.types[base]
		if h, ok := r.help[base]; ok {
			fmt.Fprintf(&b, "# HELP %s %s\n", base, h)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", base, typ)

		for _, name := range r.seriesFor(base) {
			m := r.series[name]
			switch {
			case m.counter != nil:
				fmt.Fprintf(&b, "%s %d\n", name, m.counter.Value())
			case m.gauge != nil:
				fmt.Fprintf(&b, "%s %d\n", name, m.gauge.Value())
			case m.histogram != nil:
				renderHistogram(&b, base, labelPart(name), m.histogram)
			}
		}
	}
	return b.String()
}

func (r *Registry) seriesFor(base string) []string {
	var names []string
	for n := range r.series {
		if baseName(n) == base {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func renderHistogram(b *strings.Builder, base, labels string, h *Histogram) {
	buckets, counts, sum, count := h.snapshot()

	suffix := ""
	if labels != "" {
		suffix = "," + labels
	}
	cumulative := uint64(0)
	for i, bk := range buckets {
		cumulative += counts[i]
		fmt.Fprintf(b, "%s_bucket{le=\"%g\"%s} %d\n", base, bk, suffix, cumulative)
	}
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"%s} %d\n", base, suffix, count)

	wrap := ""
	if labels != "" {
		wrap = "{" + labels + "}"
	}
	fmt.Fprintf(b, "%s_sum%s %g\n", base, wrap, sum)
	fmt.Fprintf(b, "%s_count%s %d\n", base, wrap, count)
}

// Handler returns an http.Handler serving the rendered metrics.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}

// Serve starts an HTTP server on the given port serving /metrics.
func (r *Registry) Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

// ServeAsync starts the metrics server in a goroutine.
func (r *Registry) ServeAsync(port int) {
	go func() {
		if err := r.Serve(port); err != nil {
			fmt.Printf("metrics server error on port %d: %v\n", port, err)
		}
	}()
}
