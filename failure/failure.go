// Package failure classifies the errors the core reports to its callers.
package failure

import (
	"net/http"

	"github.com/zeebo/errs"
)

var (
	// NotFound is a referenced user or asset that does not exist.
	NotFound = errs.Class("not found")
	// Validation is malformed input, rejected before any store call.
	Validation = errs.Class("validation failure")
	// Upstream is a failed object store or vision service call.
	Upstream = errs.Class("upstream failure")
	// Consistency is a database row pointing at an object the store does not have.
	Consistency = errs.Class("consistency violation")
)

// Status maps an error to the HTTP status reported to the client.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case NotFound.Has(err), Validation.Has(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return Status(err) == http.StatusBadRequest
}
