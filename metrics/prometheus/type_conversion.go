package prometheusmetrics

import (
	"github.com/prebid/tcstring/metrics"
)

func asStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func connectionErrorValues() []string {
	return []string{connectionAcceptError, connectionCloseError}
}

func statusValues() []string {
	return asStrings(metrics.DecodeStatuses())
}

func versionValues() []string {
	return asStrings(metrics.TCFVersions())
}
