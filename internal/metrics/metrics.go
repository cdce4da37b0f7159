// Package metrics exposes gameplay and HTTP collectors for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soaringjerry/Jornada/internal/game"
)

// Collector owns its registry so tests and multiple servers never collide on
// the global default registerer.
type Collector struct {
	registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	dieRolls         *prometheus.CounterVec
	answers          *prometheus.CounterVec
	reportsSaved     *prometheus.CounterVec
	adminLogins      *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	requestDuration  *prometheus.HistogramVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		sessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_sessions_started_total",
			Help: "Sessions started, by mode",
		}, []string{"mode"}),
		sessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_sessions_finished_total",
			Help: "Sessions that reached the last cell, by mode",
		}, []string{"mode"}),
		dieRolls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_die_rolls_total",
			Help: "Die rolls, by mode and face",
		}, []string{"mode", "face"}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_answers_total",
			Help: "Answered questions, by mode and outcome (profile tag or correct/wrong)",
		}, []string{"mode", "outcome"}),
		reportsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_reports_saved_total",
			Help: "Report save attempts, by status",
		}, []string{"status"}),
		adminLogins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jornada_admin_login_attempts_total",
			Help: "Admin login attempts, by status",
		}, []string{"status"}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "jornada_active_sessions",
			Help: "Sessions currently held in memory",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jornada_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) SessionStarted(mode game.Mode) {
	c.sessionsStarted.WithLabelValues(string(mode)).Inc()
}

func (c *Collector) DieRolled(mode game.Mode, roll int) {
	c.dieRolls.WithLabelValues(string(mode), strconv.Itoa(roll)).Inc()
}

func (c *Collector) QuestionAnswered(mode game.Mode, outcome string) {
	c.answers.WithLabelValues(string(mode), outcome).Inc()
}

func (c *Collector) SessionFinished(mode game.Mode) {
	c.sessionsFinished.WithLabelValues(string(mode)).Inc()
}

func (c *Collector) ReportSaved(err error) {
	c.reportsSaved.WithLabelValues(status(err)).Inc()
}

func (c *Collector) AdminLogin(err error) {
	c.adminLogins.WithLabelValues(status(err)).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// ObserveRequest records one served request; route is the mux pattern, not the raw path.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
