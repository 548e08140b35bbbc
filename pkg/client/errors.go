package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// ErrorKind classifies a failed provider call.
type ErrorKind string

const (
	// KindTimeout means the request exceeded the configured deadline.
	KindTimeout ErrorKind = "timeout"

	// KindConnection means the provider could not be reached.
	KindConnection ErrorKind = "connection"

	// KindAuth means the provider rejected the API key (401).
	KindAuth ErrorKind = "auth"

	// KindNotFound means the provider does not know the city (404).
	KindNotFound ErrorKind = "not_found"

	// KindService is any other non-2xx provider response.
	KindService ErrorKind = "service"

	// KindTransport is every other request-layer failure.
	KindTransport ErrorKind = "transport"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrTimeout    = errors.New("request timed out")
	ErrConnection = errors.New("unable to connect to weather service")
	ErrAuth       = errors.New("invalid API key")
	ErrNotFound   = errors.New("city not found")
	ErrService    = errors.New("weather service error")
	ErrTransport  = errors.New("error fetching weather data")
)

var sentinels = map[ErrorKind]error{
	KindTimeout:    ErrTimeout,
	KindConnection: ErrConnection,
	KindAuth:       ErrAuth,
	KindNotFound:   ErrNotFound,
	KindService:    ErrService,
	KindTransport:  ErrTransport,
}

// Error is returned by every failed GetCurrent/GetForecast call.
type Error struct {
	Kind       ErrorKind
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// UserMessage is the text shown to a person at the terminal.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "Request timed out. Please check your internet connection."
	case KindConnection:
		return "Unable to connect to weather service. Please check your internet connection."
	case KindAuth:
		return "Invalid API key. Please check your OPENWEATHER_API_KEY."
	case KindNotFound:
		return "City not found. Please check the city name and try again."
	case KindService:
		return "Weather service error: " + e.Message
	default:
		if e.Err != nil {
			return fmt.Sprintf("Error fetching weather data: %v", e.Err)
		}
		return "Error fetching weather data: " + e.Message
	}
}

// KindOf returns the kind of a client error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// statusError classifies a non-2xx provider response.
func statusError(status int, statusText string) *Error {
	detail := fmt.Sprintf("%d %s", status, statusText)
	switch status {
	case 401:
		return &Error{Kind: KindAuth, StatusCode: status, Message: detail}
	case 404:
		return &Error{Kind: KindNotFound, StatusCode: status, Message: detail}
	default:
		return &Error{Kind: KindService, StatusCode: status, Message: detail}
	}
}

// classifyError categorizes a failure from http.Client.Do. The *url.Error
// wrapper is dropped so messages never carry the request URL and its API key.
func classifyError(err error) *Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnection, Message: "connection failed", Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: KindConnection, Message: "connection failed", Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &Error{Kind: KindConnection, Message: "connection failed", Err: err}
	}

	return &Error{Kind: KindTransport, Message: "request failed", Err: err}
}
