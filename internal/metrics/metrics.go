package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for commands received, messages sent, completed forms and payroll payments,
// and histograms for database query and report generation durations.
type Metrics struct {
	CommandReceived  *prometheus.CounterVec   // Counter for received commands and menu actions
	SentMessages     *prometheus.CounterVec   // Counter for sent messages
	DBQueryDuration  *prometheus.HistogramVec // Histogram for database query durations
	Forms            *prometheus.CounterVec   // Counter for finished forms by outcome
	PayrollPaid      *prometheus.CounterVec   // Counter for mark-paid attempts by result
	ReportGeneration *prometheus.HistogramVec // Histogram for report generation durations
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "metrica_commands_received_total",
			Help: "Total number of used commands",
		}, []string{"command"}), // command: start, help, calendar, payroll_mark_paid
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "metrica_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, edit, document, error
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metrica_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'list_orders', 'payroll_summary'
		Forms: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "metrica_forms_total",
			Help: "Finished conversational forms.",
		}, []string{"form", "outcome"}), // outcome: saved, cancelled, expired, failed
		PayrollPaid: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "metrica_payroll_paid_total",
			Help: "Attempts to mark payroll entries as paid.",
		}, []string{"result"}), // result: paid, already_paid, not_found, compensated, error
		ReportGeneration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "metrica_report_generation_duration_seconds",
			Help: "Duration of report excel generation.",
		}, []string{"report"}),
	}
}
