// Package stats counts intersection work per shape kind.
package stats

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const shapeLabel = "shape"

var (
	// Registry holds every collector in this package
	Registry = prometheus.NewRegistry()

	intersectionTests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raykernel",
		Name:      "intersection_tests_total",
		Help:      "Ray-shape intersection tests performed.",
	}, []string{shapeLabel})

	intersectionHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raykernel",
		Name:      "intersection_hits_total",
		Help:      "Ray-shape intersection tests that found a hit.",
	}, []string{shapeLabel})
)

func init() {
	Registry.MustRegister(intersectionTests, intersectionHits)
}

// ShapeCounters are the counters for one shape kind, resolved once
type ShapeCounters struct {
	tests prometheus.Counter
	hits  prometheus.Counter
}

// ForShape returns the counters labelled with kind
func ForShape(kind string) ShapeCounters {
	return ShapeCounters{
		tests: intersectionTests.WithLabelValues(kind),
		hits:  intersectionHits.WithLabelValues(kind),
	}
}

// Record counts one test and, if hit is set, one hit
func (c ShapeCounters) Record(hit bool) {
	c.tests.Inc()
	if hit {
		c.hits.Inc()
	}
}

// Counts is a snapshot of the counters for one shape kind
type Counts struct {
	Shape string
	Tests float64
	Hits  float64
}

// Snapshot gathers the current counter values sorted by shape kind
func Snapshot() ([]Counts, error) {
	families, err := Registry.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "gather intersection stats")
	}

	byShape := map[string]*Counts{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			kind := labelValue(m, shapeLabel)
			c, ok := byShape[kind]
			if !ok {
				c = &Counts{Shape: kind}
				byShape[kind] = c
			}
			switch mf.GetName() {
			case "raykernel_intersection_tests_total":
				c.Tests = m.GetCounter().GetValue()
			case "raykernel_intersection_hits_total":
				c.Hits = m.GetCounter().GetValue()
			}
		}
	}

	out := make([]Counts, 0, len(byShape))
	for _, c := range byShape {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shape < out[j].Shape })
	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
