package transcript

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DisplayLayout is the fixed header timestamp layout,
// e.g. "1970-01-01 12:00 AM UTC".
const DisplayLayout = "2006-01-02 03:04 PM MST"

// UnknownTime is printed for messages that carry no timestamp.
const UnknownTime = "Unknown Time"

// Encoding is the wire form of a platform's timestamps.
type Encoding int

const (
	EncodingRFC3339 Encoding = iota
	EncodingUnix
)

// Unix seconds of 0001-01-01 and 9999-12-31T23:59:59Z.
const (
	minUnix = -62135596800
	maxUnix = 253402300799
)

// TimeFormatter converts platform timestamps into display strings in one
// time zone. The zone is resolved once at construction.
type TimeFormatter struct {
	loc *time.Location
	enc Encoding
}

// NewTimeFormatter resolves zone as an IANA name. An unknown zone is
// logged and replaced by UTC.
func NewTimeFormatter(zone string, enc Encoding, logger *log.Logger) *TimeFormatter {
	logger = orDiscard(logger)
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" || strings.EqualFold(zone, "local") {
		if zone != "" && !strings.EqualFold(zone, "utc") {
			logger.Printf("WARN: invalid timezone %q, falling back to UTC", zone)
		}
		loc = time.UTC
	}
	return &TimeFormatter{loc: loc, enc: enc}
}

// Location is the resolved display zone.
func (f *TimeFormatter) Location() *time.Location {
	return f.loc
}

// FormatString parses s according to the formatter's encoding.
func (f *TimeFormatter) FormatString(s string) (string, error) {
	switch f.enc {
	case EncodingUnix:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrEpochParse, s, err)
		}
		return f.FormatUnix(v)
	default:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrTimestampParse, s, err)
		}
		return f.format(t), nil
	}
}

// FormatUnix formats fractional Unix seconds, truncated to whole seconds.
func (f *TimeFormatter) FormatUnix(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < minUnix || v > maxUnix {
		return "", fmt.Errorf("%w: %v", ErrTimestampRange, v)
	}
	return f.format(time.Unix(int64(v), 0)), nil
}

// FormatUnixPtr formats an optional epoch value, using UnknownTime for nil.
func (f *TimeFormatter) FormatUnixPtr(v *float64) (string, error) {
	if v == nil {
		return UnknownTime, nil
	}
	return f.FormatUnix(*v)
}

func (f *TimeFormatter) format(t time.Time) string {
	return t.In(f.loc).Format(DisplayLayout)
}
