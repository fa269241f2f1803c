package store

import (
	"errors"
	"fmt"
)

// Kind classifies a persistence failure so callers can decide to log,
// retry or ignore it.
type Kind int

const (
	KindNone Kind = iota
	// KindNotConfigured means no remote record is set up.
	KindNotConfigured
	// KindEncode means the list could not be serialized.
	KindEncode
	// KindCache means the local mirror could not be read or written.
	KindCache
	// KindTransport means the request never got an HTTP response.
	KindTransport
	// KindStatus means the store answered with a non-2xx status.
	KindStatus
	// KindNotFound means the remote record does not exist.
	KindNotFound
	// KindDecode means the stored payload is malformed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotConfigured:
		return "not-configured"
	case KindEncode:
		return "encode"
	case KindCache:
		return "cache"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindNotFound:
		return "not-found"
	case KindDecode:
		return "decode"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every Gateway operation.
type Error struct {
	Op   string // save, load, load-cached, create
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func opErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the Kind carried by err, KindNone for nil and
// KindTransport for errors that did not come from a Gateway.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}
