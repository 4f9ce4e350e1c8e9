package web

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Conversions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	require.NotNil(t, m)

	m.Conversions.WithLabelValues("ok").Inc()
	m.Conversions.WithLabelValues("ok").Inc()
	m.Conversions.WithLabelValues("error").Inc()

	require.Equal(t, float64(2), testutil.ToFloat64(m.Conversions.WithLabelValues("ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Conversions.WithLabelValues("error")))
}

func TestMetrics_RecordsEmitted(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	require.NotNil(t, m)

	m.RecordsEmitted.Add(42)

	require.Equal(t, float64(42), testutil.ToFloat64(m.RecordsEmitted))
}

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	// Vec families only show up in Gather after first access.
	m.Conversions.WithLabelValues("ok").Add(0)
	m.ConversionTime.Observe(0.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	require.Contains(t, names, "csvxml_conversions_total")
	require.Contains(t, names, "csvxml_records_emitted_total")
	require.Contains(t, names, "csvxml_conversion_duration_seconds")
}
