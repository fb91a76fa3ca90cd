package httphelper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype TransportSubtype
	}{
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantType:    ErrTypeTimeout,
			wantSubtype: TransportTimeout,
		},
		{
			name:        "wrapped deadline",
			err:         &url.Error{Op: "Get", URL: "http://x", Err: fmt.Errorf("read: %w", os.ErrDeadlineExceeded)},
			wantType:    ErrTypeTimeout,
			wantSubtype: TransportTimeout,
		},
		{
			name:        "connection refused",
			err:         &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}},
			wantType:    ErrTypeTransport,
			wantSubtype: TransportConnectionRefused,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantType:    ErrTypeTransport,
			wantSubtype: TransportHostUnreachable,
		},
		{
			name:        "dns",
			err:         &url.Error{Op: "Get", URL: "http://nope", Err: &net.DNSError{Err: "no such host", Name: "nope"}},
			wantType:    ErrTypeTransport,
			wantSubtype: TransportDNS,
		},
		{
			name:     "connection dropped",
			err:      &url.Error{Op: "Post", URL: "http://x", Err: io.EOF},
			wantType: ErrTypeTransport,
		},
		{
			name:     "bad scheme",
			err:      &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)},
			wantType: ErrTypeUnknown,
		},
		{
			name:     "plain error",
			err:      errors.New("something else"),
			wantType: ErrTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransportError(tt.err, "http://x")
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v (err: %v)", got.Type, tt.wantType, got)
			}
			if got.Subtype != tt.wantSubtype {
				t.Errorf("Subtype = %v, want %v", got.Subtype, tt.wantSubtype)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestClassifyTransportError_Nil(t *testing.T) {
	if got := ClassifyTransportError(nil, "http://x"); got != nil {
		t.Errorf("ClassifyTransportError(nil) = %v, want nil", got)
	}
}

func TestRequestError_Predicates(t *testing.T) {
	dup := fmt.Errorf("append: %w", NewDuplicateKeyError("k"))
	if !IsDuplicateKeyError(dup) {
		t.Error("IsDuplicateKeyError should see through wrapping")
	}
	if IsInvalidConfigurationError(dup) || IsTimeoutError(dup) || IsTransportError(dup) {
		t.Error("duplicate key error matched another predicate")
	}

	cfg := NewInvalidConfigurationError("bad")
	if !IsInvalidConfigurationError(cfg) {
		t.Error("IsInvalidConfigurationError = false")
	}
	if !strings.Contains(cfg.Error(), "Invalid Configuration: bad") {
		t.Errorf("Error() = %q", cfg.Error())
	}

	if IsDuplicateKeyError(errors.New("x")) {
		t.Error("plain errors are not request errors")
	}
}
