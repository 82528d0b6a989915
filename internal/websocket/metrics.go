package websocket

import "github.com/prometheus/client_golang/prometheus"

const (
	dropInvalidJSON    = "invalid_json"
	dropMissingAction  = "missing_action"
	dropEmptyContent   = "empty_content"
	dropInvalidContent = "invalid_content"
	dropUnhandled      = "unhandled_action"
)

var (
	wsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_agent_ws_connected",
			Help: "1 while the backend websocket is open.",
		},
	)
	wsFramesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_agent_ws_frames_received_total",
			Help: "Total websocket frames received from the backend.",
		},
	)
	wsFramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_agent_ws_frames_dropped_total",
			Help: "Frames dropped before reaching a listener.",
		},
		[]string{"reason"},
	)
	wsDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_agent_ws_dispatches_total",
			Help: "Frames dispatched to listeners, by action.",
		},
		[]string{"action"},
	)
	wsListenerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_agent_ws_listener_panics_total",
			Help: "Listener invocations that panicked and were recovered.",
		},
	)
	wsReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_agent_ws_reconnects_total",
			Help: "Reconnect attempts after the connection dropped.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnected, wsFramesReceived, wsFramesDropped, wsDispatches, wsListenerPanics, wsReconnects)
}

func setConnected(open bool) {
	if open {
		wsConnected.Set(1)
		return
	}
	wsConnected.Set(0)
}

func incReceived() {
	wsFramesReceived.Inc()
}

func incDropped(reason string) {
	wsFramesDropped.WithLabelValues(reason).Inc()
}

func incDispatched(action string) {
	wsDispatches.WithLabelValues(action).Inc()
}

func incListenerPanics() {
	wsListenerPanics.Inc()
}

func incReconnects() {
	wsReconnects.Inc()
}
