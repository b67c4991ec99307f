package errs

import "net/http"

// errorMap holds the message and HTTP status for every application error code.
// A zero Status means 400 Bad Request.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed request body."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	ErrUserAlreadyExists:     {Code: ErrUserAlreadyExists, Message: "User already exists.", Status: http.StatusConflict},
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrInvalidUsername:       {Code: ErrInvalidUsername, Message: "Username must be %d-%d characters."},
	ErrInvalidEmail:          {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrInvalidPassword:       {Code: ErrInvalidPassword, Message: "Password must be %d-%d characters."},
	ErrMessageContentEmpty:   {Code: ErrMessageContentEmpty, Message: "Message is empty."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrReceiverInvalid:       {Code: ErrReceiverInvalid, Message: "Invalid message receiver."},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "Unsupported image file."},

	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Authentication required.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrNotAnnounced:       {Code: ErrNotAnnounced, Message: "Send login before other events."},

	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage is unavailable.", Status: http.StatusServiceUnavailable},
}
