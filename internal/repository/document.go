package repository

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"campus-portal-backend/internal/models"
)

// Document is the JSON form of a listing used by the postgres and memory stores
type Document map[string]any

// EncodeDocument converts a listing into its stored JSON form. Populated user summaries are never stored.
func EncodeDocument(item any) (Document, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	delete(doc, "poster")
	delete(doc, "claimant")
	return doc, nil
}

// DecodeDocument fills dst from a stored document
func DecodeDocument(doc Document, dst any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// NormalizeFilter round-trips a filter through JSON so values compare like stored ones
func NormalizeFilter(filter map[string]any) (Document, error) {
	if len(filter) == 0 {
		return Document{}, nil
	}
	return EncodeDocument(filter)
}

func (d Document) set(field string) []string {
	values, _ := d[field].([]any)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d Document) touch() {
	d["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
}

func storeSet(d Document, field string, values []string) {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	d[field] = out
}

// Toggle removes userID from the set field if present, else appends it
func (d Document) Toggle(field, userID string) (bool, int) {
	current := d.set(field)
	kept := current[:0:0]
	removed := false
	for _, v := range current {
		if v == userID {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	if !removed {
		kept = append(kept, userID)
	}
	storeSet(d, field, kept)
	d.touch()
	return !removed, len(kept)
}

// Add appends userID to the set field; it fails if already present
func (d Document) Add(field, userID string) (int, error) {
	current := d.set(field)
	for _, v := range current {
		if v == userID {
			return len(current), models.ErrAlreadyMember
		}
	}
	current = append(current, userID)
	storeSet(d, field, current)
	d.touch()
	return len(current), nil
}

// Transition moves the status field from `from` to `to`, merging set into the document
func (d Document) Transition(from, to string, set map[string]any) error {
	status, _ := d[StatusField].(string)
	if from != "" && status != from {
		return fmt.Errorf("status is %q: %w", status, models.ErrInvalidState)
	}
	d[StatusField] = to
	for k, v := range set {
		d[k] = v
	}
	d.touch()
	return nil
}

// IncrementViews adds one to the views counter
func (d Document) IncrementViews() {
	views, _ := d["views"].(float64)
	d["views"] = views + 1
}

// Matches reports whether every filter field equals the document's value
func (d Document) Matches(filter Document) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(d[k], want) {
			return false
		}
	}
	return true
}

// Compare orders two documents by field, treating strings that parse as RFC 3339 as times
func Compare(a, b Document, field string) int {
	as, _ := a[field].(string)
	bs, _ := b[field].(string)
	at, aerr := time.Parse(time.RFC3339Nano, as)
	bt, berr := time.Parse(time.RFC3339Nano, bs)
	if aerr == nil && berr == nil {
		return at.Compare(bt)
	}
	return strings.Compare(as, bs)
}
