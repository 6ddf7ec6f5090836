package status

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FlowStatus is the process-visible marker of where the active signing
// flow currently is. The host companion app polls it through the debug
// server for UX parity with the device screen.
type FlowStatus int

const (
	Idle FlowStatus = iota
	AwaitingConfirmation
	FetchingMeta
	FetchingInputs
	FetchingOutputs
	VerifyingOutputs
	Signing
	Aborted
	Completed
)

func (s FlowStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case FetchingMeta:
		return "fetching_meta"
	case FetchingInputs:
		return "fetching_inputs"
	case FetchingOutputs:
		return "fetching_outputs"
	case VerifyingOutputs:
		return "verifying_outputs"
	case Signing:
		return "signing"
	case Aborted:
		return "aborted"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	// FlowStatusGauge 以数值形式导出当前流程状态，供 /metrics 抓取
	FlowStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "device_flow_status",
			Help: "Current signing flow status per app.",
		},
		[]string{"app"},
	)

	// FlowsTotal 记录流程结果总量
	FlowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_flows_total",
			Help: "Total number of signing flows by app and outcome.",
		},
		[]string{"app", "outcome"},
	)
)

// Init registers the status metrics
func Init() {
	prometheus.MustRegister(FlowStatusGauge)
	prometheus.MustRegister(FlowsTotal)
}

var (
	mu      sync.RWMutex
	current = map[string]FlowStatus{}
)

// Set records the flow status for an app and mirrors it to the gauge.
func Set(app string, s FlowStatus) {
	mu.Lock()
	current[app] = s
	mu.Unlock()
	FlowStatusGauge.WithLabelValues(app).Set(float64(s))
}

// Get returns the last recorded status for an app.
func Get(app string) FlowStatus {
	mu.RLock()
	defer mu.RUnlock()
	return current[app]
}

// Snapshot returns all recorded statuses as strings, keyed by app.
func Snapshot() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(current))
	for app, s := range current {
		out[app] = s.String()
	}
	return out
}
