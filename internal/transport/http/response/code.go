package response

import (
	"net/http"

	"linkbio/internal/core/errs"
)

// Duplicate usernames are documented as 400, so Conflict maps there.
var kindStatus = map[errs.Kind]int{
	errs.KindBadRequest:   http.StatusBadRequest,
	errs.KindUnauthorized: http.StatusUnauthorized,
	errs.KindForbidden:    http.StatusForbidden,
	errs.KindNotFound:     http.StatusNotFound,
	errs.KindConflict:     http.StatusBadRequest,
	errs.KindInternal:     http.StatusInternalServerError,
}

func Status(k errs.Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}
