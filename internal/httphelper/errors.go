package httphelper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeDuplicateKey indicates a parameter was appended under a key that already exists
	ErrTypeDuplicateKey ErrorType = iota
	// ErrTypeInvalidConfiguration indicates a request was configured in a way that cannot be sent
	ErrTypeInvalidConfiguration
	// ErrTypeTimeout indicates the deadline elapsed or the server gave no usable response
	ErrTypeTimeout
	// ErrTypeTransport indicates a network-level failure (refused, DNS, reset, ...)
	ErrTypeTransport
	// ErrTypeUnknown indicates any other failure
	ErrTypeUnknown
)

// TransportSubtype narrows down a transport failure
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportDNS
	TransportHostUnreachable
	TransportNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeDuplicateKey:
		return "Duplicate Key"
	case ErrTypeInvalidConfiguration:
		return "Invalid Configuration"
	case ErrTypeTimeout:
		return "No Response"
	case ErrTypeTransport:
		return "Network Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// RequestError describes a failure building or executing a request
type RequestError struct {
	Type       ErrorType        // Category of error
	Message    string           // Human-readable error message
	StatusCode int              // HTTP status code (if applicable)
	Err        error            // Underlying error (if any)
	Subtype    TransportSubtype // Finer classification for transport errors
	URL        string           // Request URL (for context)
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ClassifyTransportError inspects an error returned by the HTTP transport.
// The returned error has Type ErrTypeTimeout for deadline failures and
// ErrTypeTransport for everything recognised as a network failure.
// Errors that carry no network information are classified ErrTypeUnknown.
func ClassifyTransportError(err error, rawURL string) *RequestError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) || os.IsTimeout(err) {
		return &RequestError{
			Type:    ErrTypeTimeout,
			Message: "request timed out",
			Err:     err,
			Subtype: TransportTimeout,
			URL:     rawURL,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RequestError{
			Type:    ErrTypeTransport,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
			Subtype: TransportDNS,
			URL:     rawURL,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &RequestError{
				Type:    ErrTypeTransport,
				Message: "connection refused",
				Err:     err,
				Subtype: TransportConnectionRefused,
				URL:     rawURL,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &RequestError{
				Type:    ErrTypeTransport,
				Message: "host unreachable",
				Err:     err,
				Subtype: TransportHostUnreachable,
				URL:     rawURL,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &RequestError{
				Type:    ErrTypeTransport,
				Message: "network unreachable",
				Err:     err,
				Subtype: TransportNetworkUnreachable,
				URL:     rawURL,
			}
		}
		return &RequestError{
			Type:    ErrTypeTransport,
			Message: "network error occurred",
			Err:     err,
			URL:     rawURL,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error also wraps plain mistakes such as an unsupported
		// protocol scheme; only connection-level causes are network errors.
		inner := ClassifyTransportError(urlErr.Err, rawURL)
		if inner.Type == ErrTypeUnknown && isConnectionDrop(urlErr.Err) {
			inner.Type = ErrTypeTransport
			inner.Message = "connection closed by peer"
		}
		inner.Err = err
		return inner
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &RequestError{
				Type:    ErrTypeTimeout,
				Message: "request timed out",
				Err:     err,
				Subtype: TransportTimeout,
				URL:     rawURL,
			}
		}
		return &RequestError{
			Type:    ErrTypeTransport,
			Message: "network error occurred",
			Err:     err,
			URL:     rawURL,
		}
	}

	return &RequestError{
		Type:    ErrTypeUnknown,
		Message: "unexpected failure",
		Err:     err,
		URL:     rawURL,
	}
}

func isConnectionDrop(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed)
}

// NewDuplicateKeyError creates an error for a key that is already present
func NewDuplicateKeyError(key string) *RequestError {
	return &RequestError{
		Type:    ErrTypeDuplicateKey,
		Message: fmt.Sprintf("key already exists: %q", key),
	}
}

// NewInvalidConfigurationError creates a configuration error
func NewInvalidConfigurationError(message string) *RequestError {
	return &RequestError{
		Type:    ErrTypeInvalidConfiguration,
		Message: message,
	}
}

func errorType(err error) (ErrorType, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Type, true
	}
	return 0, false
}

// IsDuplicateKeyError checks if an error is a duplicate key error
func IsDuplicateKeyError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeDuplicateKey
}

// IsInvalidConfigurationError checks if an error is a configuration error
func IsInvalidConfigurationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeInvalidConfiguration
}

// IsTimeoutError checks if an error is a timeout / no response error
func IsTimeoutError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeTimeout
}

// IsTransportError checks if an error is a network-level error
func IsTransportError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeTransport
}
