package prom

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Export publishes the metrics of a finished run to a node exporter textfile
// and/or a pushgateway. Empty targets are skipped.
func Export(g prometheus.Gatherer, textfile, pushURL, job string) error {
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, g); err != nil {
			return fmt.Errorf("failed to write metrics textfile %s: %w", textfile, err)
		}
	}
	if pushURL != "" {
		if err := push.New(pushURL, job).Gatherer(g).Push(); err != nil {
			return fmt.Errorf("failed to push metrics to %s: %w", pushURL, err)
		}
	}
	return nil
}
