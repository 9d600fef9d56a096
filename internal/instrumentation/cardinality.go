package instrumentation

import "strconv"

// Cardinality management helpers for metrics.
//
// Import job status codes are open-ended on the platform side. Unless
// detailed labels are enabled, anything outside the documented codes is
// folded into a single bucket.

// Job status label values.
const (
	JobStatusLabelSucceeded  = "succeeded"
	JobStatusLabelInProgress = "in_progress"
	JobStatusLabelOther      = "other"
	JobStatusLabelMissing    = "missing"
)

// JobStatusLabel maps an import job status code to a bounded label value.
//
// Example:
//
//	JobStatusLabel(ptr(0), false)   // "succeeded"
//	JobStatusLabel(ptr(2), false)   // "in_progress"
//	JobStatusLabel(ptr(117), false) // "other"
//	JobStatusLabel(ptr(117), true)  // "117"
//	JobStatusLabel(nil, false)      // "missing"
func JobStatusLabel(status *int, detailed bool) string {
	if status == nil {
		return JobStatusLabelMissing
	}
	switch *status {
	case 0:
		return JobStatusLabelSucceeded
	case 1, 2:
		return JobStatusLabelInProgress
	}
	if detailed {
		return strconv.Itoa(*status)
	}
	return JobStatusLabelOther
}
