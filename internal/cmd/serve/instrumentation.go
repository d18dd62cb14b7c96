package serve

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/clambin/go-common/http/metrics"
	"github.com/clambin/go-common/http/roundtripper"
	"github.com/prometheus/client_golang/prometheus"
)

func instrumentedRoundTripper(rt http.RoundTripper, registry prometheus.Registerer) http.RoundTripper {
	m := metrics.NewRequestMetrics(metrics.Options{
		Namespace: "smart",
		Subsystem: "tado",
		LabelValues: func(request *http.Request, statusCode int) (string, string, string) {
			// collapse home-scoped paths so zone/home ids don't blow up cardinality
			const homePath = "/api/v2/homes"
			path := request.URL.Path
			if strings.HasPrefix(path, homePath) {
				path = homePath
			}
			return request.Method, path, strconv.Itoa(statusCode)
		},
	})
	if registry != nil {
		registry.MustRegister(m)
	}
	return roundtripper.New(
		roundtripper.WithRequestMetrics(m),
		roundtripper.WithRoundTripper(rt),
	)
}
