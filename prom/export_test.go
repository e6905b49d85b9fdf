package prom

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestExportTextfile(t *testing.T) {
	LinesRead.WithLabelValues("build").Add(3)
	path := filepath.Join(t.TempDir(), "dupsketch.prom")

	require.NoError(t, Export(prometheus.DefaultGatherer, path, "", "dupsketch"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `dupsketch_lines_read_total{mode="build"}`)
}

func TestExportPush(t *testing.T) {
	var method, path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "dupsketch_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	require.NoError(t, Export(reg, "", srv.URL, "shard-7"))
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/shard-7", path)
	require.NotEmpty(t, body)
}

func TestExportNothingConfigured(t *testing.T) {
	require.NoError(t, Export(prometheus.NewRegistry(), "", "", ""))
}

func TestExportPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	err := Export(prometheus.NewRegistry(), "", srv.URL, "job")
	require.Error(t, err)
	require.Contains(t, err.Error(), srv.URL)
}
