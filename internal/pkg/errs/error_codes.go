/*
Package errs provides the application error type and its error code constants.

Codes identify request, domain and system failures both inside the server and in
the JSON bodies returned to clients.
*/
package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the Content-Type header is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the caller exceeded its request budget.
	ErrRateLimitExceeded = 1007
)

// 2xxx: User and message errors
const (
	ErrUserAlreadyExists = 2001
	ErrUserNotFound      = 2002
	ErrInvalidUsername   = 2003
	ErrInvalidEmail      = 2004
	ErrInvalidPassword   = 2005

	// ErrMessageContentEmpty indicates a message without content.
	ErrMessageContentEmpty = 2101

	// ErrMessageContentTooLong indicates content above the per-message byte limit.
	ErrMessageContentTooLong = 2102

	// ErrReceiverInvalid indicates a missing or self-addressed receiver.
	ErrReceiverInvalid = 2103

	// ErrFileTypeInvalid indicates an avatar upload with a disallowed type or size.
	ErrFileTypeInvalid = 2201
)

// 3xxx: Authentication and session errors
const (
	// ErrUnauthorized indicates a missing, malformed or expired token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = 3002

	// ErrNotAnnounced indicates a socket event sent before the login announcement.
	ErrNotAnnounced = 3003
)

// 5xxx: Internal system errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage backend failed or is disabled.
	ErrFileStorageFailed = 5001
)
