// Package exporters serves the device metrics over HTTP.
package exporters

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/nxv4l2/internal/logging"
)

// HTTPHandler serves every registered metric. A collector that fails
// during a scrape is logged under the "metrics" module and the rest of
// the scrape is still served.
func HTTPHandler() http.Handler {
	return handlerFor(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, logging.GetLogger("metrics"))
}

func handlerFor(reg prometheus.Registerer, g prometheus.Gatherer, logger *slog.Logger) http.Handler {
	return promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:          scrapeLog{logger},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}))
}

// scrapeLog adapts slog to promhttp.Logger.
type scrapeLog struct {
	logger *slog.Logger
}

func (l scrapeLog) Println(v ...any) {
	l.logger.Warn("Metrics scrape error", "error", fmt.Sprint(v...))
}
