package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"campus-portal-backend/internal/models"

	"github.com/rs/zerolog/log"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Fields is the text part of a multipart listing request. A key that is missing
// from the map was not sent at all.
type Fields map[string]string

// fieldReader applies present fields onto a listing and remembers the first parse error
type fieldReader struct {
	f   Fields
	err error
}

func (f Fields) reader() *fieldReader {
	return &fieldReader{f: f}
}

func (r *fieldReader) fail(field, msg string) {
	if r.err == nil {
		r.err = models.NewValidationError(field, msg)
	}
}

// text returns the value when it is present and non-empty
func (r *fieldReader) text(key string) (string, bool) {
	v, ok := r.f[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// str overwrites dst when the field is present and non-empty
func (r *fieldReader) str(key string, dst *string) {
	if v, ok := r.text(key); ok {
		*dst = v
	}
}

// boolean overwrites dst whenever the field is present; only "true" is true
func (r *fieldReader) boolean(key string, dst *bool) {
	if v, ok := r.f[key]; ok {
		*dst = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}

// integer overwrites dst whenever the field is present; an empty value means zero
func (r *fieldReader) integer(key string, dst *int) {
	v, ok := r.f[key]
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = 0
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, "must be a whole number")
		return
	}
	*dst = n
}

func (r *fieldReader) number(key string, dst *float64) {
	v, ok := r.f[key]
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = 0
		return
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, "must be a number")
		return
	}
	*dst = n
}

func (r *fieldReader) parseTime(key string) (time.Time, bool) {
	v, ok := r.text(key)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t.UTC(), true
		}
	}
	r.fail(key, "must be a date")
	return time.Time{}, false
}

func (r *fieldReader) date(key string, dst *time.Time) {
	if t, ok := r.parseTime(key); ok {
		*dst = t
	}
}

func (r *fieldReader) datePtr(key string, dst **time.Time) {
	if t, ok := r.parseTime(key); ok {
		*dst = &t
	}
}

// lenientJSON decodes an optional JSON-encoded field. A value that fails to parse
// is logged and dropped. It reports whether dst was decoded.
func (r *fieldReader) lenientJSON(key string, dst any) bool {
	v, ok := r.text(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		log.Warn().Err(err).Str("field", key).Msg("Ignoring malformed JSON field")
		return false
	}
	return true
}

// stringList decodes a JSON array of strings leniently, keeping dst on failure
func (r *fieldReader) stringList(key string, dst *[]string) {
	var list []string
	if r.lenientJSON(key, &list) {
		*dst = list
	}
}
