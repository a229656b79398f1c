package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shiftsCreatedMetric     = promauto.NewCounter(prometheus.CounterOpts{Name: "staffing_shifts_created", Help: "Shifts created"})
	shiftsValidatedMetric   = promauto.NewCounter(prometheus.CounterOpts{Name: "staffing_shifts_validated", Help: "Shifts validated"})
	payslipsGeneratedMetric = promauto.NewCounter(prometheus.CounterOpts{Name: "staffing_payslips_generated", Help: "Payslips generated"})
	messagesSentMetric      = promauto.NewCounter(prometheus.CounterOpts{Name: "staffing_messages_sent", Help: "Direct messages sent"})
	exchangesResolvedMetric = promauto.NewCounter(prometheus.CounterOpts{Name: "staffing_exchanges_resolved", Help: "Shift exchanges accepted or rejected"})
)
