// Package metrics defines and registers all custom Prometheus metrics for the
// content service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "content"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts token validations.
// Labels:
//   - type: "access" or "refresh"
//   - result: "ok", "expired", "bad_signature", "malformed", "wrong_type" or "unknown_subject"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of token validations, by token type and result.",
	},
	[]string{"type", "result"},
)

// PolicyDecisionsTotal counts role-authority decisions on user management actions.
// Labels:
//   - action: "delete_user", "promote_admin" or "revoke_admin"
//   - decision: e.g. "allow", "deny", "self_action_forbidden"
var PolicyDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_decisions_total",
		Help:      "Total number of role-authority decisions, by action and decision.",
	},
	[]string{"action", "decision"},
)

// ── Article metrics ───────────────────────────────────────────────────────────

// ArticlesWrittenTotal counts successful article writes.
// Label:
//   - op: "create", "update" or "delete"
var ArticlesWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "articles_written_total",
		Help:      "Total number of article writes, by operation.",
	},
	[]string{"op"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit events discarded because a worker channel was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit events dropped because the queue was full.",
	},
)
