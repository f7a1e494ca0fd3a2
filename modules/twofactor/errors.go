package twofactor

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type, expected application/json")
	ErrInvalidRequestBody   = errors.New("invalid request body")
	ErrMissingAttemptID     = errors.New("missing attempt id")
	ErrThrottled            = errors.New("too many requests for this account")
	ErrThrottleUnavailable  = errors.New("rate limiter unavailable")
)

// apiError is the error member of the JSON envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMapping orders sentinel checks from most to least specific. The
// first match decides the status code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{ErrInvalidRequestBody, http.StatusBadRequest, "bad_request"},
	{ErrMissingAttemptID, http.StatusBadRequest, "bad_request"},
	{ErrThrottled, http.StatusTooManyRequests, "too_many_requests"},
	{ErrThrottleUnavailable, http.StatusServiceUnavailable, "rate_limiter_unavailable"},
	{secondfactor.ErrInvalidAccount, http.StatusBadRequest, "invalid_account"},
	{secondfactor.ErrAttemptNotFound, http.StatusNotFound, "attempt_not_found"},
	{secondfactor.ErrRetryLimitExceeded, http.StatusLocked, "retry_limit_exceeded"},
	{secondfactor.ErrAttemptFinished, http.StatusConflict, "attempt_finished"},
	{secondfactor.ErrAttemptBusy, http.StatusConflict, "attempt_busy"},
	{secondfactor.ErrNotInSetup, http.StatusConflict, "not_in_setup"},
	{secondfactor.ErrRecoveryMailAlreadySent, http.StatusConflict, "recovery_mail_already_sent"},
	{secondfactor.ErrNoRescueCodes, http.StatusConflict, "no_rescue_codes"},
	{secondfactor.ErrNotificationFailure, http.StatusBadGateway, "notification_failure"},
	{secondfactor.ErrMissingNotifier, http.StatusNotImplemented, "recovery_disabled"},
	{secondfactor.ErrCorruptState, http.StatusInternalServerError, "corrupt_state"},
	{secondfactor.ErrStorePersistence, http.StatusServiceUnavailable, "store_unavailable"},
}

func classify(err error) (int, apiError) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, apiError{Code: m.code, Message: m.err.Error()}
		}
	}
	return http.StatusInternalServerError, apiError{Code: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
}
