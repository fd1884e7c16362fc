package errutil

import "net/http"

type CoreStatus string

const (
	StatusUnknown             CoreStatus = "unknown"
	StatusBadRequest          CoreStatus = "bad_request"
	StatusValidationFailed    CoreStatus = "validation_failed"
	StatusUnauthorized        CoreStatus = "unauthorized"
	StatusForbidden           CoreStatus = "forbidden"
	StatusNotFound            CoreStatus = "not_found"
	StatusConflict            CoreStatus = "conflict"
	StatusTimeout             CoreStatus = "timeout"
	StatusInternal            CoreStatus = "internal"
	StatusUpstreamSync        CoreStatus = "upstream_sync_failed"
	StatusServiceUnavailable  CoreStatus = "service_unavailable"
	StatusClientClosedRequest CoreStatus = "client_closed_request"
)

// HTTPStatus converts the CoreStatus to its HTTP response code.
// Upstream sync failures are 500 on purpose: the local mutation has been
// compensated, but the caller still needs to treat the operation as failed.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusTimeout:
		return http.StatusGatewayTimeout
	case StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	case StatusClientClosedRequest:
		return 499
	case StatusInternal, StatusUpstreamSync, StatusUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
