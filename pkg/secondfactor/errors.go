package secondfactor

import "errors"

var (
	ErrInvalidAccount          = errors.New("account name is required")
	ErrStorePersistence        = errors.New("second factor store operation failed")
	ErrCorruptState            = errors.New("second factor state is inconsistent")
	ErrRetryLimitExceeded      = errors.New("retry limit exceeded")
	ErrAttemptFinished         = errors.New("login attempt already finished")
	ErrAttemptNotFound         = errors.New("login attempt not found")
	ErrAttemptBusy             = errors.New("login attempt is being processed by another request")
	ErrNotInSetup              = errors.New("login attempt is not in setup")
	ErrNotificationFailure     = errors.New("failed to send recovery notification")
	ErrRecoveryMailAlreadySent = errors.New("recovery mail already sent")
	ErrNoRescueCodes           = errors.New("account has no rescue codes")
	ErrMissingNotifier         = errors.New("recovery notifier is not configured")
)
