// Package server exposes the checker over HTTP. The handler is transport
// agnostic; HTTP3Server serves it over QUIC.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/derivation"
	"github.com/orizon-lang/derivcheck/internal/registry"
)

// MaxBodyBytes bounds the size of a derivation posted to /v1/check
const MaxBodyBytes = 1 << 20

// Options configures the handler
type Options struct {
	// Language and Ruleset are used when a document names none
	Language string
	Ruleset  string
	Logger   *cli.Logger
}

type endpointMetrics struct {
	c2xx, c4xx, c5xx uint64
	sumNS, cnt       uint64
}

type metricsRecorder struct {
	inflight int64
	lines    uint64
	failed   uint64
	mu       sync.Mutex
	by       map[string]*endpointMetrics
}

func newMetricsRecorder() *metricsRecorder {
	m := &metricsRecorder{by: make(map[string]*endpointMetrics)}
	for _, k := range []string{"healthz", "check", "rulesets", "metrics"} {
		m.by[k] = &endpointMetrics{}
	}
	return m
}

func (m *metricsRecorder) endpoint(name string) *endpointMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	em, ok := m.by[name]
	if !ok {
		em = &endpointMetrics{}
		m.by[name] = em
	}
	return em
}

func (m *metricsRecorder) observe(name string, code int, d time.Duration) {
	em := m.endpoint(name)
	switch code / 100 {
	case 2:
		atomic.AddUint64(&em.c2xx, 1)
	case 4:
		atomic.AddUint64(&em.c4xx, 1)
	default:
		atomic.AddUint64(&em.c5xx, 1)
	}
	atomic.AddUint64(&em.cnt, 1)
	atomic.AddUint64(&em.sumNS, uint64(d.Nanoseconds()))
}

type statusWriter struct {
	rw   http.ResponseWriter
	code int
}

func (s *statusWriter) Header() http.Header  { return s.rw.Header() }
func (s *statusWriter) WriteHeader(code int) { s.code = code; s.rw.WriteHeader(code) }
func (s *statusWriter) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.rw.Write(b)
}

// handler serves the check API
type handler struct {
	reg     *registry.Registry
	opts    Options
	logger  *cli.Logger
	metrics *metricsRecorder
}

// NewHandler returns the HTTP handler for the check API:
//
//	GET  /healthz      liveness
//	POST /v1/check     check a derivation document
//	GET  /v1/rulesets  list registered rulesets
//	GET  /metrics      request and line counters
func NewHandler(reg *registry.Registry, opts Options) http.Handler {
	h := &handler{reg: reg, opts: opts, logger: opts.Logger, metrics: newMetricsRecorder()}
	if h.logger == nil {
		h.logger = cli.NewLogger(false, false)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.wrap("healthz", h.healthz))
	mux.HandleFunc("/v1/check", h.wrap("check", h.check))
	mux.HandleFunc("/v1/rulesets", h.wrap("rulesets", h.rulesets))
	mux.HandleFunc("/metrics", h.wrap("metrics", h.serveMetrics))
	return mux
}

// wrap adds a request id, panic recovery, metrics and access logging
func (h *handler) wrap(name string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = genReqID()
		}
		w.Header().Set("X-Request-ID", rid)

		start := time.Now()
		atomic.AddInt64(&h.metrics.inflight, 1)
		sw := &statusWriter{rw: w}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					h.logger.Error("panic: %v request_id=%s", rec, rid)
					if sw.code == 0 {
						writeError(sw, http.StatusInternalServerError, "internal error")
					}
				}
			}()
			fn(sw, r)
		}()
		if sw.code == 0 {
			sw.code = http.StatusOK
		}
		atomic.AddInt64(&h.metrics.inflight, -1)
		d := time.Since(start)
		h.metrics.observe(name, sw.code, d)
		h.logger.Info("%s %s -> %d in %s request_id=%s", r.Method, r.URL.RequestURI(), sw.code, d, rid)
	}
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		if errors.As(err, new(*http.MaxBytesError)) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Sprintf("failed to read request body: %v", err))
		return
	}

	var doc *derivation.Document
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		doc, err = derivation.ParseText(strings.NewReader(string(body)))
	} else {
		doc, err = derivation.DecodeJSON(body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q := r.URL.Query(); q.Get("ruleset") != "" {
		doc.Ruleset = q.Get("ruleset")
	}

	languageRef, rulesetRef := doc.Language, doc.Ruleset
	if languageRef == "" {
		languageRef = h.opts.Language
	}
	if rulesetRef == "" {
		rulesetRef = h.opts.Ruleset
	}
	lang, rs, err := h.reg.Resolve(languageRef, rulesetRef)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, registry.ErrIncompatible):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := derivation.NewChecker(lang, rs, derivation.WithLogger(h.logger)).Check(doc.Lines)
	atomic.AddUint64(&h.metrics.lines, uint64(len(report.Verdicts)))
	atomic.AddUint64(&h.metrics.failed, uint64(len(report.Failed())))
	writeJSON(w, http.StatusOK, report)
}

type rulesetInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Languages []string `json:"languages"`
	Rules     []string `json:"rules"`
}

func (h *handler) rulesets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := make([]rulesetInfo, 0)
	for _, rs := range h.reg.Rulesets() {
		out = append(out, rulesetInfo{Name: rs.Name, Version: rs.Version, Languages: rs.Languages, Rules: rs.Names()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) serveMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	m := h.metrics
	var b strings.Builder
	fmt.Fprintf(&b, "# TYPE derivcheck_inflight gauge\nderivcheck_inflight %d\n", atomic.LoadInt64(&m.inflight))
	fmt.Fprintf(&b, "# TYPE derivcheck_lines_checked_total counter\nderivcheck_lines_checked_total %d\n", atomic.LoadUint64(&m.lines))
	fmt.Fprintf(&b, "# TYPE derivcheck_lines_failed_total counter\nderivcheck_lines_failed_total %d\n", atomic.LoadUint64(&m.failed))

	m.mu.Lock()
	names := make([]string, 0, len(m.by))
	for name := range m.by {
		names = append(names, name)
	}
	m.mu.Unlock()
	sort.Strings(names)

	fmt.Fprintf(&b, "# TYPE derivcheck_requests_total counter\n")
	for _, name := range names {
		em := m.endpoint(name)
		fmt.Fprintf(&b, "derivcheck_requests_total{handler=\"%s\",class=\"2xx\"} %d\n", name, atomic.LoadUint64(&em.c2xx))
		fmt.Fprintf(&b, "derivcheck_requests_total{handler=\"%s\",class=\"4xx\"} %d\n", name, atomic.LoadUint64(&em.c4xx))
		fmt.Fprintf(&b, "derivcheck_requests_total{handler=\"%s\",class=\"5xx\"} %d\n", name, atomic.LoadUint64(&em.c5xx))
		fmt.Fprintf(&b, "derivcheck_request_duration_seconds_sum{handler=\"%s\"} %.6f\n", name, float64(atomic.LoadUint64(&em.sumNS))/1e9)
		fmt.Fprintf(&b, "derivcheck_request_duration_seconds_count{handler=\"%s\"} %d\n", name, atomic.LoadUint64(&em.cnt))
	}
	_, _ = w.Write([]byte(b.String()))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// genReqID returns a random 16-byte hex string.
func genReqID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
