// Package metrics collects and exposes Prometheus metrics for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records roster sync and reminder delivery outcomes.
type Collector struct {
	syncSuccess    prometheus.Counter
	syncFailure    prometheus.Counter
	rosterRows     prometheus.Gauge
	anomalousDates prometheus.Gauge
	remindersSent  prometheus.Counter
	sendFailures   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftbot_sync_success_total",
			Help: "Successful roster sync runs.",
		}),
		syncFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftbot_sync_failure_total",
			Help: "Roster sync runs that fetched no data.",
		}),
		rosterRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shiftbot_roster_rows",
			Help: "Shift rows stored by the last successful sync.",
		}),
		anomalousDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shiftbot_roster_anomalous_dates",
			Help: "Rows of the last sync whose date key failed normalization.",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftbot_reminders_sent_total",
			Help: "Shift reminders delivered.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftbot_send_failures_total",
			Help: "Reminder deliveries that failed.",
		}),
	}

	reg.MustRegister(
		c.syncSuccess,
		c.syncFailure,
		c.rosterRows,
		c.anomalousDates,
		c.remindersSent,
		c.sendFailures,
	)
	return c
}

// RecordSyncSuccess records a completed roster replacement.
func (c *Collector) RecordSyncSuccess(rows, anomalous int) {
	c.syncSuccess.Inc()
	c.rosterRows.Set(float64(rows))
	c.anomalousDates.Set(float64(anomalous))
}

// RecordSyncFailure records a sync run that left the roster untouched.
func (c *Collector) RecordSyncFailure() { c.syncFailure.Inc() }

// RecordReminderSent records a delivered reminder.
func (c *Collector) RecordReminderSent() { c.remindersSent.Inc() }

// RecordSendFailure records a failed delivery.
func (c *Collector) RecordSendFailure() { c.sendFailures.Inc() }

// Handler returns the /metrics HTTP handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
