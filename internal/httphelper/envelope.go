package httphelper

import (
	"encoding/json"
	"fmt"
)

// EnvelopeKey is the object key every error envelope carries
const EnvelopeKey = "FrameworkException"

// NoResponseMessage is reported when the deadline elapses or the server
// answers with an error status.
const NoResponseMessage = "response stream was null, refer to network errors: timeout or 500"

// Envelope renders msg as a single-element error array:
//
//	[{"FrameworkException":"<msg>"}]
func Envelope(msg string) string {
	data, err := json.Marshal([]map[string]string{{EnvelopeKey: msg}})
	if err != nil {
		// map[string]string always marshals
		panic(err)
	}
	return string(data)
}

// NoResponseEnvelope is the fixed envelope returned on timeout.
func NoResponseEnvelope() string {
	return Envelope(NoResponseMessage)
}

// NetworkEnvelope reports a transport-layer failure.
func NetworkEnvelope(err error) string {
	return Envelope(fmt.Sprintf("network exception! error: %v", err))
}

// UnknownEnvelope reports any other failure.
func UnknownEnvelope(err error) string {
	return Envelope(fmt.Sprintf("unknown exception! error: %v", err))
}

// ParseEnvelope reports whether body is an error envelope and returns its message.
func ParseEnvelope(body string) (string, bool) {
	var items []map[string]string
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return "", false
	}
	if len(items) != 1 || len(items[0]) != 1 {
		return "", false
	}
	msg, ok := items[0][EnvelopeKey]
	return msg, ok
}
