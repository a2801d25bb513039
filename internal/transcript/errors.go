package transcript

import "errors"

var (
	ErrTimestampParse = errors.New("invalid RFC3339 timestamp")
	ErrEpochParse     = errors.New("invalid epoch timestamp")
	ErrTimestampRange = errors.New("timestamp out of range")
	ErrFormat         = errors.New("format transcript")
)
