package service

import (
	"errors"
	"fmt"
)

// ErrNoResponse marks a request that was sent but never answered.
var ErrNoResponse = errors.New("No response from server. Please check your network connection.")

// ErrInvalidResponse marks a 2xx answer whose body could not be decoded.
var ErrInvalidResponse = errors.New("invalid response from server")

// StatusError is a response from the backend with a non-2xx status.
type StatusError struct {
	StatusCode int
	StatusText string
	// Message is the server supplied explanation, if the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d %s: %s", e.StatusCode, e.StatusText, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, e.StatusText)
}

// RequestError is returned when a request could not be built or sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// DescribeQueryError renders a query failure the way the chat page shows it.
func DescribeQueryError(err error) string {
	var statusErr *StatusError
	var reqErr *RequestError
	switch {
	case errors.As(err, &statusErr):
		msg := statusErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status code %d", statusErr.StatusCode)
		}
		return fmt.Sprintf("Server error: %d - %s", statusErr.StatusCode, msg)
	case errors.Is(err, ErrNoResponse):
		return ErrNoResponse.Error()
	case errors.As(err, &reqErr):
		return "Error: " + reqErr.Err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// DescribeUploadError renders an upload failure the way the upload page shows it.
func DescribeUploadError(err error) string {
	var statusErr *StatusError
	var reqErr *RequestError
	switch {
	case errors.As(err, &statusErr):
		return "Upload failed: " + statusErr.StatusText
	case errors.Is(err, ErrNoResponse):
		return ErrNoResponse.Error()
	case errors.As(err, &reqErr):
		return "Error: " + reqErr.Err.Error()
	default:
		return "Error: " + err.Error()
	}
}
