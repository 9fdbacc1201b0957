package prometheusmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type labelValues struct {
	name   string
	values []string
}

func preloadLabelValues(m *Metrics) {
	for _, labels := range labelPermutations(labelValues{connectionErrorLabel, connectionErrorValues()}) {
		m.connectionsError.With(labels)
	}
	for _, labels := range labelPermutations(
		labelValues{versionLabel, versionValues()},
		labelValues{statusLabel, statusValues()},
	) {
		m.decodes.With(labels)
	}
	for _, labels := range labelPermutations(labelValues{versionLabel, versionValues()}) {
		m.decodeTimer.With(labels)
	}
}

// labelPermutations returns the cartesian product of the given label values.
func labelPermutations(dimensions ...labelValues) []prometheus.Labels {
	permutations := []prometheus.Labels{{}}
	for _, dimension := range dimensions {
		next := make([]prometheus.Labels, 0, len(permutations)*len(dimension.values))
		for _, partial := range permutations {
			for _, value := range dimension.values {
				labels := make(prometheus.Labels, len(partial)+1)
				for k, v := range partial {
					labels[k] = v
				}
				labels[dimension.name] = value
				next = append(next, labels)
			}
		}
		permutations = next
	}
	return permutations
}
