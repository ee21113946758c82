package errtrack

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Encoder defines the interface for tracking record serialization.
type Encoder interface {
	// Encode serializes a value to bytes.
	Encode(any) ([]byte, error)
	// Decode deserializes bytes to a value.
	Decode([]byte, any) error
}

// JSONEncoder is the default implementation of Encoder using JSON.
// It uses standard library for encoding and sonic for decoding.
type JSONEncoder struct{}

// Encode serializes a value to JSON using standard library.
func (*JSONEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode deserializes JSON bytes using sonic.
func (*JSONEncoder) Decode(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// trackingRecord is the persisted shape of an ErrorTracking value.
// ErrorCount is written for operators reading the key by hand; it is never trusted on read.
type trackingRecord struct {
	Errors     []ExceptionInfo `json:"Errors"`
	Final      bool            `json:"Final"`
	ErrorCount int             `json:"ErrorCount"`
}

func encodeTracking(enc Encoder, t ErrorTracking) ([]byte, error) {
	errs := t.Errors
	if errs == nil {
		errs = []ExceptionInfo{}
	}
	return enc.Encode(trackingRecord{Errors: errs, Final: t.Final, ErrorCount: len(errs)})
}

// storedRecord is the read side of trackingRecord. Errors and Final are
// required, so their presence is tracked.
type storedRecord struct {
	Errors     *[]ExceptionInfo `json:"Errors"`
	Final      *bool            `json:"Final"`
	ErrorCount int              `json:"ErrorCount"`
}

// decodeTracking parses a stored record. The second return value is the
// ErrorCount found in the payload, so callers can report drift.
func decodeTracking(enc Encoder, raw []byte) (ErrorTracking, int, error) {
	var rec *storedRecord
	if err := enc.Decode(raw, &rec); err != nil {
		return ErrorTracking{}, 0, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	switch {
	case rec == nil:
		return ErrorTracking{}, 0, fmt.Errorf("%w: null document", ErrCorruptRecord)
	case rec.Errors == nil:
		return ErrorTracking{}, 0, fmt.Errorf("%w: missing Errors", ErrCorruptRecord)
	case rec.Final == nil:
		return ErrorTracking{}, 0, fmt.Errorf("%w: missing Final", ErrCorruptRecord)
	}
	return ErrorTracking{Errors: *rec.Errors, Final: *rec.Final}, rec.ErrorCount, nil
}
