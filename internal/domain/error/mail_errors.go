package error

import "errors"

// Outbound mail errors.
var (
	// ErrUnknownMailKind is returned when no template exists for a mail kind.
	ErrUnknownMailKind = errors.New("unknown mail kind")

	// ErrMailRejected is returned when the provider refuses a mail for good.
	ErrMailRejected = errors.New("mail rejected by provider")

	// ErrMailUnavailable is returned when the provider may accept the mail later.
	ErrMailUnavailable = errors.New("mail provider unavailable")
)

// MailErrorCode defines error codes for outbound mail.
// Format: MAIL-XXYYYY.
type MailErrorCode string

const (
	// Outbox errors (01XXXX)
	ErrCodeMailEnqueue MailErrorCode = "MAIL-010001"

	// Delivery errors (02XXXX)
	ErrCodeMailRejected    MailErrorCode = "MAIL-020001"
	ErrCodeMailUnavailable MailErrorCode = "MAIL-020002"

	// Template errors (03XXXX)
	ErrCodeMailTemplate MailErrorCode = "MAIL-030001"
)

type MailError = CodedError[MailErrorCode]

// NewMailError creates a new MailError.
func NewMailError(code MailErrorCode, message string, err error) *MailError {
	return newCoded(code, message, err)
}

// IsPermanentMailFailure reports whether retrying a mail cannot help.
func IsPermanentMailFailure(err error) bool {
	if errors.Is(err, ErrMailRejected) || errors.Is(err, ErrUnknownMailKind) {
		return true
	}
	var mailErr *MailError
	if errors.As(err, &mailErr) {
		return mailErr.Code == ErrCodeMailRejected || mailErr.Code == ErrCodeMailTemplate
	}
	return false
}
