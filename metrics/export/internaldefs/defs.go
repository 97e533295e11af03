package internaldefs

import (
	"github.com/restodash/authkit"
)

// CounterDef binds a metric ID to its exported series name and help.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric ID to its series name and help.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Successful credential logins."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Failed credential logins."},
	{ID: authkit.MetricLoginRejectedInFlight, Name: "authkit_login_rejected_in_flight_total", Help: "Logins rejected because another exchange was in flight."},
	{ID: authkit.MetricGoogleLoginSuccess, Name: "authkit_google_login_success_total", Help: "Successful Google provider logins."},
	{ID: authkit.MetricGoogleLoginFailure, Name: "authkit_google_login_failure_total", Help: "Failed Google provider logins."},
	{ID: authkit.MetricRegisterSuccess, Name: "authkit_register_success_total", Help: "Successful registrations."},
	{ID: authkit.MetricRegisterFailure, Name: "authkit_register_failure_total", Help: "Failed registrations."},
	{ID: authkit.MetricLogout, Name: "authkit_logout_total", Help: "Explicit user logouts."},
	{ID: authkit.MetricForcedLogoutExpired, Name: "authkit_forced_logout_expired_total", Help: "Forced logouts due to token expiry."},
	{ID: authkit.MetricForcedLogoutUnauthorized, Name: "authkit_forced_logout_unauthorized_total", Help: "Forced logouts due to a 401 response."},
	{ID: authkit.MetricHydrateAuthenticated, Name: "authkit_hydrate_authenticated_total", Help: "Hydrations that restored a session."},
	{ID: authkit.MetricHydrateAnonymous, Name: "authkit_hydrate_anonymous_total", Help: "Hydrations that found no session."},
	{ID: authkit.MetricHydrateExpired, Name: "authkit_hydrate_expired_total", Help: "Hydrations that discarded an expired session."},
	{ID: authkit.MetricHydrateCorrupt, Name: "authkit_hydrate_corrupt_total", Help: "Unreadable or corrupt stored sessions treated as absent."},
	{ID: authkit.MetricFetchBlockedExpired, Name: "authkit_fetch_blocked_expired_total", Help: "Requests blocked before sending due to an expired session."},
	{ID: authkit.MetricFetchUnauthorized, Name: "authkit_fetch_unauthorized_total", Help: "Requests answered 401 by the backend."},
	{ID: authkit.MetricGuardChecks, Name: "authkit_guard_checks_total", Help: "Expiration guard sweeps."},
	{ID: authkit.MetricStoreSaveFailure, Name: "authkit_store_save_failure_total", Help: "Session persistence failures after a successful exchange."},
}

var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricLoginLatency, Name: "authkit_login_latency_milliseconds", Help: "Credential exchange latency histogram."},
}

// HistogramBounds are the bucket upper bounds as rendered in the
// Prometheus le label.
var HistogramBounds = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"1000",
	"+Inf",
}

// HistogramBoundSuffix are the bound spellings usable in instrument
// names.
var HistogramBoundSuffix = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"1000",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
