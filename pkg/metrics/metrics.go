package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "vessel_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	resourceLevel   *prometheus.GaugeVec
	resourceActions *prometheus.CounterVec
	deferredWrites  *prometheus.CounterVec

	alertsCreated *prometheus.CounterVec
	notifications *prometheus.CounterVec

	schedulerTicks       *prometheus.CounterVec
	schedulerTickLatency *prometheus.HistogramVec
	engineRunning        prometheus.Gauge

	reportExports *prometheus.CounterVec
)

// Init registers the service metrics on the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		resourceLevel = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "resource_level_percent",
				Help: "Current resource level in percent of capacity",
			},
			[]string{"resource"},
		)
		resourceActions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "resource_actions_total",
				Help: "Total applied resource actions by resource and action",
			},
			[]string{"resource", "action"},
		)
		deferredWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "deferred_writes_total",
				Help: "Total resource writes deferred by the write budget",
			},
			[]string{"resource"},
		)

		alertsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_created_total",
				Help: "Total alerts raised by resource and severity",
			},
			[]string{"resource", "severity"},
		)
		notifications = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total alert notifications by channel and result",
			},
			[]string{"channel", "result"},
		)

		schedulerTicks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "scheduler_ticks_total",
				Help: "Total consumption ticks by group",
			},
			[]string{"group"},
		)
		schedulerTickLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "scheduler_tick_latency_seconds",
				Help:    "Consumption tick latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"group"},
		)
		engineRunning = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "engine_running",
				Help: "1 while the main engine is running",
			},
		)

		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			resourceLevel,
			resourceActions,
			deferredWrites,
			alertsCreated,
			notifications,
			schedulerTicks,
			schedulerTickLatency,
			engineRunning,
			reportExports,
		)
	})
}

func SetResourceLevel(resource string, level float64) {
	if resourceLevel != nil {
		resourceLevel.WithLabelValues(resource).Set(level)
	}
}

func IncResourceAction(resource, action string) {
	if resourceActions != nil {
		resourceActions.WithLabelValues(resource, action).Inc()
	}
}

func IncDeferredWrite(resource string) {
	if deferredWrites != nil {
		deferredWrites.WithLabelValues(resource).Inc()
	}
}

func IncAlertCreated(resource, severity string) {
	if alertsCreated != nil {
		alertsCreated.WithLabelValues(resource, severity).Inc()
	}
}

func IncNotification(channel, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if notifications != nil {
		notifications.WithLabelValues(channel, result).Inc()
	}
}

// ObserveTick records one scheduler tick for a consumption group.
func ObserveTick(group string, duration time.Duration) {
	if schedulerTicks != nil {
		schedulerTicks.WithLabelValues(group).Inc()
	}
	if schedulerTickLatency != nil {
		schedulerTickLatency.WithLabelValues(group).Observe(duration.Seconds())
	}
}

func SetEngineRunning(running bool) {
	if engineRunning == nil {
		return
	}
	if running {
		engineRunning.Set(1)
	} else {
		engineRunning.Set(0)
	}
}

func IncReportExport(format, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if reportExports != nil {
		reportExports.WithLabelValues(format, result).Inc()
	}
}
