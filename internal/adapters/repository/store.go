// Package repository defines the document store holding shop records.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Record is one stored document.
type Record struct {
	ID   string
	Data map[string]any
}

// Filter narrows List to documents whose string field equals Value.
type Filter struct {
	Field string
	Value string
}

// Eq matches documents whose field holds exactly value.
func Eq(field, value string) Filter { return Filter{Field: field, Value: value} }

// Store provides access to named collections of JSON documents. Stored
// numbers come back as json.Number.
type Store interface {
	// List returns the collection's documents in insertion order.
	List(ctx context.Context, collection string, filters ...Filter) ([]Record, error)
	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, collection, id string) (Record, error)
	// Insert stores data under a fresh id and returns it.
	Insert(ctx context.Context, collection string, data map[string]any) (string, error)
	// Put creates or replaces the document id.
	Put(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges patch into an existing document.
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	// Delete returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Matches reports whether data satisfies every filter.
func Matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		s, ok := data[f.Field].(string)
		if !ok || s != f.Value {
			return false
		}
	}
	return true
}

// Encode renders a document body.
func Encode(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return b, nil
}

// Decode parses a document body, keeping numbers exact.
func Decode(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Merge applies patch on top of base. A nil value removes the field.
func Merge(base, patch map[string]any) map[string]any {
	out := maps.Clone(base)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// CheckCollection rejects blank collection names.
func CheckCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return ErrInvalidCollection
	}
	return nil
}
