// Package rdperr defines the error taxonomy shared by every layer of the
// RDP core. Errors are composable fragments: lowercase, no trailing
// punctuation, chained with Unwrap so the outer presenter can join them
// with ", caused by" (see Report).
package rdperr

import (
	"errors"
	"fmt"
)

// Field is a structured key/value attached to an error or diagnostic event.
// The core never formats these into strings itself; the caller's
// collaborator decides how to render them.
type Field struct {
	Key   string
	Value any
}

// NotEnoughBytes is returned by decoders and bounded writers on underflow.
// It is recoverable: a framer seeing this on a decode can wait for more
// bytes before retrying.
type NotEnoughBytes struct {
	Needed    int
	Available int
	Context   string
}

func (e *NotEnoughBytes) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("not enough bytes for %s: needed %d, available %d", e.Context, e.Needed, e.Available)
	}
	return fmt.Sprintf("not enough bytes: needed %d, available %d", e.Needed, e.Available)
}

func (e *NotEnoughBytes) Fields() []Field {
	return []Field{{"needed", e.Needed}, {"available", e.Available}, {"context", e.Context}}
}

// InvalidField indicates a decoded or about-to-be-encoded value violates an
// invariant: out of range, a reserved bit misused, a length mismatch, or an
// unknown tag.
type InvalidField struct {
	Name   string
	Reason string
	Cause  error
}

func (e *InvalidField) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Name, e.Reason)
}

func (e *InvalidField) Unwrap() error { return e.Cause }

func (e *InvalidField) Fields() []Field {
	return []Field{{"name", e.Name}, {"reason", e.Reason}}
}

// UnexpectedMessageType indicates a PDU arrived in a phase that forbids it.
type UnexpectedMessageType struct {
	Phase   string
	Got     string
	Allowed []string
}

func (e *UnexpectedMessageType) Error() string {
	return fmt.Sprintf("unexpected message type %s during %s", e.Got, e.Phase)
}

func (e *UnexpectedMessageType) Fields() []Field {
	return []Field{{"phase", e.Phase}, {"got", e.Got}, {"allowed", e.Allowed}}
}

// NegotiationFailure indicates a protocol/capability intersection came up
// empty, or the server rejected negotiation outright.
type NegotiationFailure struct {
	Step string
	Code uint32
	Name string
}

func (e *NegotiationFailure) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("negotiation failure during %s: %s (code 0x%08x)", e.Step, e.Name, e.Code)
	}
	return fmt.Sprintf("negotiation failure during %s: code 0x%08x", e.Step, e.Code)
}

func (e *NegotiationFailure) Fields() []Field {
	return []Field{{"step", e.Step}, {"code", e.Code}, {"name", e.Name}}
}

// AuthenticationFailure is distinct from protocol errors so a caller can
// re-prompt credentials without tearing down the whole connection machine.
type AuthenticationFailure struct {
	SubCause string
	Cause    error
}

func (e *AuthenticationFailure) Error() string {
	return "authentication failure: " + e.SubCause
}

func (e *AuthenticationFailure) Unwrap() error { return e.Cause }

func (e *AuthenticationFailure) Fields() []Field {
	return []Field{{"subcause", e.SubCause}}
}

// CodecFailure is warning-class: the surrounding update is dropped but the
// session continues.
type CodecFailure struct {
	Codec  string
	Reason string
	Cause  error
}

func (e *CodecFailure) Error() string {
	return fmt.Sprintf("codec failure in %s: %s", e.Codec, e.Reason)
}

func (e *CodecFailure) Unwrap() error { return e.Cause }

func (e *CodecFailure) Fields() []Field {
	return []Field{{"codec", e.Codec}, {"reason", e.Reason}}
}

// SessionTerminated carries the server-provided reason a session ended,
// either via set-error-info or an MCS disconnect ultimatum.
type SessionTerminated struct {
	Reason     string
	ReasonCode uint32
}

func (e *SessionTerminated) Error() string {
	return fmt.Sprintf("session terminated: %s (code 0x%08x)", e.Reason, e.ReasonCode)
}

func (e *SessionTerminated) Fields() []Field {
	return []Field{{"reason", e.Reason}, {"reason_code", e.ReasonCode}}
}

// Report renders an error chain as spec.md's composable-fragment form:
// lowercase, no trailing punctuation, joined with ", caused by".
func Report(err error) string {
	if err == nil {
		return ""
	}

	var parts []string
	for err != nil {
		parts = append(parts, err.Error())
		err = errors.Unwrap(err)
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", caused by " + p
	}
	return out
}
