package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkflowMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)
	metrics.ObserveRemoteCall("stock_check", 250*time.Millisecond, nil)
	metrics.ObserveRemoteCall("stock_check", 10*time.Millisecond, errors.New("boom"))
	metrics.IncTransition("hold", "VALIDATE")
	metrics.IncConfirm("hold", OutcomeSubmitted)
	metrics.IncConfirm("consume", OutcomeBlocked)
	metrics.SetActive(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "workflow_remote_call_failure", "call", "stock_check"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "workflow_remote_call_duration_seconds", "call", "stock_check"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "workflow_transitions", "screen", "VALIDATE"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "workflow_confirm", "outcome", OutcomeBlocked); err != nil {
		t.Fatalf("fetch confirm: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blocked=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "workflow_active")
	if mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected active gauge of 3")
	}
}

func TestWorkflowMetricsNilSafe(t *testing.T) {
	var metrics *WorkflowMetrics
	metrics.ObserveRemoteCall("submit_hold", time.Second, nil)
	metrics.IncTransition("hold", "SELECT")
	metrics.IncConfirm("hold", OutcomeFailed)
	metrics.SetActive(1)

	unregistered := NewWorkflowMetrics(nil)
	unregistered.IncConfirm("hold", OutcomeEmptyBatch)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
