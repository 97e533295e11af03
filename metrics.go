package authkit

import "github.com/restodash/authkit/internal/metrics"

// MetricID identifies a counter or histogram. Exported for metric
// exporters under metrics/export/.
type MetricID = metrics.MetricID

// MetricsSnapshot is a point-in-time deep copy of all metric values.
type MetricsSnapshot = metrics.Snapshot

// Counter and histogram identifiers.
const (
	MetricLoginSuccess             = metrics.MetricLoginSuccess
	MetricLoginFailure             = metrics.MetricLoginFailure
	MetricLoginRejectedInFlight    = metrics.MetricLoginRejectedInFlight
	MetricGoogleLoginSuccess       = metrics.MetricGoogleLoginSuccess
	MetricGoogleLoginFailure       = metrics.MetricGoogleLoginFailure
	MetricRegisterSuccess          = metrics.MetricRegisterSuccess
	MetricRegisterFailure          = metrics.MetricRegisterFailure
	MetricLogout                   = metrics.MetricLogout
	MetricForcedLogoutExpired      = metrics.MetricForcedLogoutExpired
	MetricForcedLogoutUnauthorized = metrics.MetricForcedLogoutUnauthorized
	MetricHydrateAuthenticated     = metrics.MetricHydrateAuthenticated
	MetricHydrateAnonymous         = metrics.MetricHydrateAnonymous
	MetricHydrateExpired           = metrics.MetricHydrateExpired
	MetricHydrateCorrupt           = metrics.MetricHydrateCorrupt
	MetricFetchBlockedExpired      = metrics.MetricFetchBlockedExpired
	MetricFetchUnauthorized        = metrics.MetricFetchUnauthorized
	MetricGuardChecks              = metrics.MetricGuardChecks
	MetricStoreSaveFailure         = metrics.MetricStoreSaveFailure
	MetricLoginLatency             = metrics.MetricLoginLatency
)

// HistogramBucketBoundsMillis returns the latency bucket upper bounds
// in milliseconds; the final bucket is unbounded.
func HistogramBucketBoundsMillis() []int64 {
	return metrics.BucketBoundsMillis()
}
