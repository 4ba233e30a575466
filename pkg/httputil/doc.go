// Package httputil holds the retry helper used by the remote clients.
//
// Network failures are not retried by default: a reconcile run paces its
// requests and leaves a failed mod for the next run. Operators can opt in
// to retries through configuration, in which case [Retry] re-runs only the
// failures wrapped in [RetryableError] (connection errors and 5xx
// responses), doubling the delay after each attempt up to [MaxDelay].
package httputil
