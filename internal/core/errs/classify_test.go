package errs

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "net failure" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	var decodeTarget struct{ A int }
	syntaxErr := json.Unmarshal([]byte("{"), &map[string]any{})
	typeErr := json.Unmarshal([]byte(`{"a":"x"}`), &decodeTarget)
	_, encodeErr := json.Marshal(make(chan int))

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"classified passthrough", New(KindStorage, "disk full"), KindStorage},
		{"wrapped classified", fmt.Errorf("loading: %w", New(KindDatabase, "query failed")), KindDatabase},
		{"context canceled", context.Canceled, KindCancelled},
		{"wrapped canceled", fmt.Errorf("fetch: %w", context.Canceled), KindCancelled},
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"net timeout", &fakeNetError{timeout: true}, KindTimeout},
		{"net other", &fakeNetError{}, KindNetwork},
		{"fs not exist", fs.ErrNotExist, KindNotFound},
		{"wrapped not exist", fmt.Errorf("open config: %w", fs.ErrNotExist), KindNotFound},
		{"sql no rows", sql.ErrNoRows, KindNotFound},
		{"fs permission", fs.ErrPermission, KindForbidden},
		{"bad conn", driver.ErrBadConn, KindDatabase},
		{"tx done", sql.ErrTxDone, KindDatabase},
		{"json syntax", syntaxErr, KindDecoding},
		{"json type", typeErr, KindDecoding},
		{"json marshal", encodeErr, KindEncoding},
		{"message 401", errors.New("request failed with status 401"), KindUnauthorized},
		{"message forbidden", errors.New("403 Forbidden"), KindForbidden},
		{"message not found", errors.New("resource not found"), KindNotFound},
		{"message timed out", errors.New("operation timed out"), KindTimeout},
		{"message refused", errors.New("dial tcp: connection refused"), KindNetwork},
		{"message sql", errors.New("pq: invalid sql statement"), KindDatabase},
		{"unrecognized", errors.New("completely novel failure"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestKindSeverity(t *testing.T) {
	cases := map[Kind]Severity{
		KindNetwork:        SeverityWarning,
		KindTimeout:        SeverityWarning,
		KindValidation:     SeverityInfo,
		KindNotFound:       SeverityInfo,
		KindUnauthorized:   SeverityWarning,
		KindForbidden:      SeverityWarning,
		KindCancelled:      SeverityInfo,
		KindStorage:        SeverityError,
		KindServer:         SeverityError,
		KindProcessing:     SeverityError,
		KindDatabase:       SeverityError,
		KindEncoding:       SeverityWarning,
		KindDecoding:       SeverityWarning,
		KindUnknown:        SeverityCritical,
		KindDataCorruption: SeverityCritical,
	}

	for kind, want := range cases {
		if got := kind.Severity(); got != want {
			t.Errorf("%s severity = %s, want %s", kind, got, want)
		}
	}

	if got := Kind("bogus").Severity(); got != SeverityCritical {
		t.Errorf("unmapped kind severity = %s, want critical", got)
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityInfo < SeverityWarning && SeverityWarning < SeverityError && SeverityError < SeverityCritical) {
		t.Error("severity ordering broken")
	}
}
