package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEditorMetricsExportsCountersHistogramAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEditorMetrics(reg)

	m.ObserveCommand("field", OutcomeOK)
	m.ObserveCommand("field", OutcomeOK)
	m.ObserveCommand("remove", OutcomeRejected)
	m.ObserveCommand("", OutcomeFailed)
	m.ObserveSave(OutcomeOK, 150*time.Millisecond)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	tests := []struct {
		command, outcome string
		want             float64
	}{
		{"field", OutcomeOK, 2},
		{"remove", OutcomeRejected, 1},
		{"unknown", OutcomeFailed, 1},
	}
	for _, tt := range tests {
		got, err := counterValue(mfs, "quote_editor_commands_total", map[string]string{
			"command": tt.command, "outcome": tt.outcome,
		})
		if err != nil {
			t.Fatalf("fetch %s/%s: %v", tt.command, tt.outcome, err)
		}
		if got != tt.want {
			t.Fatalf("%s/%s: expected %v, got %v", tt.command, tt.outcome, tt.want, got)
		}
	}

	mf := findMetricFamily(mfs, "quote_editor_save_duration_seconds")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected one save histogram series, got %v", mf)
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected save duration sum > 0, got %f", sum)
	}

	gauge := findMetricFamily(mfs, "quote_editor_sessions")
	if gauge == nil {
		t.Fatal("sessions gauge not found")
	}
	if got := gauge.GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Fatalf("expected 1 open session, got %v", got)
	}
}

func TestEditorMetricsNilIsSafe(t *testing.T) {
	var m *EditorMetrics
	m.ObserveCommand("field", OutcomeOK)
	m.ObserveSave(OutcomeOK, time.Second)
	m.SessionOpened()
	m.SessionClosed()

	noop := NewEditorMetrics(nil)
	noop.ObserveCommand("field", OutcomeOK)
	noop.SessionOpened()
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
