package rpc

import (
	"github.com/pkg/errors"
	"strings"
)

const ErrPrefix = "ERR_"

// SentinelError is an error carried on the wire as a string starting with
// ERR_ in place of a result payload.
type SentinelError string

func (self SentinelError) Error() string {
	return string(self)
}

const (
	ErrTimeout        SentinelError = "ERR_TIMEOUT"
	ErrSend           SentinelError = "ERR_SEND"
	ErrBadKey         SentinelError = "ERR_BAD_KEY"
	ErrMethodNotFound SentinelError = "ERR_METHOD_NOT_FOUND"
	ErrInternal       SentinelError = "ERR_INTERNAL"
)

var (
	ErrNilFrame       = errors.New("nil call frame")
	ErrMalformedFrame = errors.New("malformed call frame")
	ErrDuplicateID    = errors.New("correlation id already pending")
	ErrAlreadyReplied = errors.New("request already replied")
	ErrNoTransport    = errors.New("peer has no transport")
)

// IsSentinel reports whether a reply value is an error sentinel.
func IsSentinel(data interface{}) bool {
	s, ok := data.(string)
	return ok && strings.HasPrefix(s, ErrPrefix)
}

// ToSentinel normalizes an error code so it carries the ERR_ prefix.
func ToSentinel(code string) SentinelError {
	if strings.HasPrefix(code, ErrPrefix) {
		return SentinelError(code)
	}
	return SentinelError(ErrPrefix + code)
}
