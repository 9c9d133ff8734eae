package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the portal's counters and serves them over HTTP.
type Collector struct {
	registry *prometheus.Registry

	logins        prometheus.Counter
	loginFailures prometheus.Counter
	registrations prometheus.Counter
	profileSaves  prometheus.Counter
	saveFailures  prometheus.Counter
	resumeUploads prometheus.Counter
}

// NewCollector registers the portal counters on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Successful sign-ins.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_login_failures_total",
			Help: "Rejected sign-in attempts.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_registrations_total",
			Help: "Accounts created.",
		}),
		profileSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_profile_saves_total",
			Help: "Profiles persisted to the row store.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_profile_save_failures_total",
			Help: "Profile save sequences aborted on error.",
		}),
		resumeUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_resume_uploads_total",
			Help: "Resume files stored.",
		}),
	}

	c.registry.MustRegister(
		c.logins,
		c.loginFailures,
		c.registrations,
		c.profileSaves,
		c.saveFailures,
		c.resumeUploads,
	)
	return c
}

func (c *Collector) RecordLogin()        { c.logins.Inc() }
func (c *Collector) RecordLoginFailure() { c.loginFailures.Inc() }
func (c *Collector) RecordRegistration() { c.registrations.Inc() }
func (c *Collector) RecordProfileSave()  { c.profileSaves.Inc() }
func (c *Collector) RecordSaveFailure()  { c.saveFailures.Inc() }
func (c *Collector) RecordResumeUpload() { c.resumeUploads.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
