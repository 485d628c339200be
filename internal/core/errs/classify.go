package errs

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"strings"
)

// Classify maps an arbitrary error to a taxonomy kind. Already-classified
// errors pass through with their kind; known standard-library error families
// map to their natural kinds; anything unrecognized is KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}

	switch {
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindForbidden
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrTxDone), errors.Is(err, sql.ErrConnDone):
		return KindDatabase
	}

	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonSyntax) || errors.As(err, &jsonType) {
		return KindDecoding
	}
	var jsonMarshaler *json.MarshalerError
	var jsonUnsupported *json.UnsupportedTypeError
	var jsonUnsupportedValue *json.UnsupportedValueError
	if errors.As(err, &jsonMarshaler) || errors.As(err, &jsonUnsupported) || errors.As(err, &jsonUnsupportedValue) {
		return KindEncoding
	}

	return classifyMessage(err.Error())
}

// classifyMessage is the last-resort textual classification for errors that
// carry no typed identity, such as responses stringified by an SDK.
func classifyMessage(msg string) Kind {
	s := strings.ToLower(msg)

	switch {
	case strings.Contains(s, "unauthorized"), strings.Contains(s, "401"):
		return KindUnauthorized
	case strings.Contains(s, "forbidden"), strings.Contains(s, "403"):
		return KindForbidden
	case strings.Contains(s, "not found"), strings.Contains(s, "404"):
		return KindNotFound
	case strings.Contains(s, "timeout"), strings.Contains(s, "timed out"), strings.Contains(s, "deadline"):
		return KindTimeout
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "no such host"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "network"):
		return KindNetwork
	case strings.Contains(s, "sql"), strings.Contains(s, "database"):
		return KindDatabase
	default:
		return KindUnknown
	}
}
