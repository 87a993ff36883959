package helpers

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"explorewithme/internal/domain"
)

// DateTimeLayout is the wire format of every date in requests and responses.
const DateTimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in DateTimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// FormatTimePtr is FormatTime for optional timestamps; nil renders as "".
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

// ParseTime parses s in DateTimeLayout as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %q", domain.ErrInvalidField, s, DateTimeLayout)
	}
	return t, nil
}

// PathInt64 returns the named path value as a positive int64.
func PathInt64(r *http.Request, name string) (int64, error) {
	s := r.PathValue(name)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidField, name)
	}
	return id, nil
}

// QueryInt64 returns a required positive int64 query parameter.
func QueryInt64(r *http.Request, name string) (int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidField, name)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidField, name)
	}
	return id, nil
}

// QueryList returns the values of a repeatable query parameter. Both
// ?x=1&x=2 and ?x=1,2 are accepted.
func QueryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryInt64List parses QueryList(r, name) as int64 ids.
func QueryInt64List(r *http.Request, name string) ([]int64, error) {
	vals := QueryList(r, name)
	if len(vals) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a list of integers", domain.ErrInvalidField, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// QueryBool returns nil when the parameter is absent.
func QueryBool(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidField, name)
	}
	return &b, nil
}

// QueryTime returns nil when the parameter is absent.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// ClientIP returns the host part of r.RemoteAddr. Behind a proxy, chi's
// RealIP middleware has already replaced RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
