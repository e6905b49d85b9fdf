package restapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/lines"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/modes"
	"github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/sketch"
)

func newTestServer(t *testing.T, input string, opts ServerOptions) *Server {
	sk, _, err := modes.BuildSketch(strings.NewReader(input), modes.BuildOptions{
		SizeBytes: 64 * 1024, Probes: 2, Hash: sketch.HashMetro, Delimiter: lines.Newline,
	})
	require.NoError(t, err)
	return NewServer(sk, opts)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

var defaultOpts = ServerOptions{Threshold: 2, RequestMaxBytes: 1024}

func TestGetRoot(t *testing.T) {
	s := newTestServer(t, "", defaultOpts)
	w := do(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "dupsketch", w.Body.String())
}

func TestGetSketch(t *testing.T) {
	s := newTestServer(t, "a\na\nb\n", defaultOpts)
	w := do(s, http.MethodGet, "/api/v1/sketch", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Equal(t, int64(64*1024), gjson.Get(body, "width").Int())
	require.Equal(t, int64(2), gjson.Get(body, "probes").Int())
	require.Equal(t, "metro", gjson.Get(body, "hash").String())
	require.Equal(t, int64(2), gjson.Get(body, "threshold").Int())

	w = do(s, http.MethodGet, "/api/v1/sketch?threshold=3", "")
	require.Equal(t, int64(3), gjson.Get(w.Body.String(), "threshold").Int())
	require.Equal(t, int64(0), gjson.Get(w.Body.String(), "threshold_counters").Int())
}

func TestPostEstimate(t *testing.T) {
	s := newTestServer(t, "a\na\nb\n", defaultOpts)
	tests := []struct {
		test       string
		target     string
		body       string
		estimates  []int
		duplicates int
	}{
		{"default threshold", "/api/v1/estimate", "a\nb\nc\n", []int{2, 1, 0}, 1},
		{"no trailing newline", "/api/v1/estimate", "b\na", []int{1, 2}, 1},
		{"threshold override", "/api/v1/estimate?threshold=1", "a\nb\nc", []int{2, 1, 0}, 2},
		{"zero terminated", "/api/v1/estimate?zero_terminated=true", "a\x00b\x00", []int{2, 1}, 1},
		{"empty body", "/api/v1/estimate", "", []int{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.test, func(t *testing.T) {
			w := do(s, http.MethodPost, tc.target, tc.body)
			require.Equal(t, http.StatusOK, w.Code)
			var resp EstimateResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.estimates, resp.Estimates)
			require.Equal(t, len(tc.estimates), resp.Lines)
			require.Equal(t, tc.duplicates, resp.Duplicates)
		})
	}
}

func TestPostFilter(t *testing.T) {
	s := newTestServer(t, "a\na\nb\n", defaultOpts)
	w := do(s, http.MethodPost, "/api/v1/filter", "b\na\nc\na")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a\na\n", w.Body.String())
	require.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))

	w = do(s, http.MethodPost, "/api/v1/filter?threshold=1", "b\na\nc\na")
	require.Equal(t, "b\na\na\n", w.Body.String())
}

func TestPostFilterTooLargeSendsNoLines(t *testing.T) {
	s := newTestServer(t, "a\na\n", defaultOpts)
	w := do(s, http.MethodPost, "/api/v1/filter", strings.Repeat("a\n", 1024))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.True(t, gjson.Valid(w.Body.String()), w.Body.String())
	require.Contains(t, gjson.Get(w.Body.String(), "detail").String(), "too large")
	require.NotContains(t, w.Body.String(), "a\n")
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, "a\n", defaultOpts)
	tests := []struct {
		test   string
		method string
		target string
		body   string
		code   int
		detail string
	}{
		{"zero threshold", http.MethodPost, "/api/v1/filter?threshold=0", "a\n", http.StatusBadRequest, "threshold"},
		{"threshold too big", http.MethodPost, "/api/v1/estimate?threshold=300", "a\n", http.StatusBadRequest, "out of range"},
		{"bad bool", http.MethodGet, "/api/v1/sketch?zero_terminated=maybe", "", http.StatusBadRequest, "invalid syntax"},
		{"body too large", http.MethodPost, "/api/v1/estimate", strings.Repeat("x\n", 1024), http.StatusRequestEntityTooLarge, "too large"},
		{"filter body too large", http.MethodPost, "/api/v1/filter", strings.Repeat("x\n", 1024), http.StatusRequestEntityTooLarge, "too large"},
	}
	for _, tc := range tests {
		t.Run(tc.test, func(t *testing.T) {
			w := do(s, tc.method, tc.target, tc.body)
			require.Equal(t, tc.code, w.Code)
			require.Contains(t, gjson.Get(w.Body.String(), "detail").String(), tc.detail)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "a\n", defaultOpts)
	do(s, http.MethodPost, "/api/v1/estimate", "a\n")
	w := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "dupsketch_restapi_response_codes")
	require.Contains(t, w.Body.String(), "dupsketch_lines_queried_total")
}
