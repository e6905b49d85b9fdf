package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupsketch_lines_read_total",
		Help: "The total number of input lines processed",
	}, []string{"mode"})
	LinesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupsketch_lines_emitted_total",
		Help: "The total number of lines emitted by filter as probable duplicates",
	})
	SketchesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupsketch_sketches_read_total",
		Help: "The total number of serialized sketches decoded",
	}, []string{"mode"})
	SketchesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupsketch_sketches_merged_total",
		Help: "The total number of sketches merged into another",
	})
	SketchBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupsketch_sketch_bytes_total",
		Help: "The total number of serialized sketch bytes read or written",
	}, []string{"direction"})
	SketchFillRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dupsketch_sketch_fill_ratio",
		Help: "Fraction of non-zero counters in the last sketch produced or loaded",
	})
	SketchSaturated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dupsketch_sketch_saturated_counters",
		Help: "Number of saturated counters in the last sketch produced or loaded",
	})
)
