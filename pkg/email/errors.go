package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
	ErrUnknownAccount    = errors.New("no email address on file for account")
	ErrEmailNotConfirmed = errors.New("email address is not confirmed")
)
