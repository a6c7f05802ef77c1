package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is implemented by every entity held in a Collection
type Record[T any] interface {
	RecordID() string
	Clone() T
}

// Collection is an id-keyed set of records that keeps insertion order.
// It serializes as a JSON array, which is the persisted layout of every collection.
type Collection[T Record[T]] struct {
	items []T
	index map[string]int
}

// NewCollection builds a collection from records in the given order
func NewCollection[T Record[T]](records ...T) Collection[T] {
	var c Collection[T]
	for _, r := range records {
		c.Put(r)
	}
	return c
}

// Len returns the number of records
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Get returns a copy of the record with the given id
func (c *Collection[T]) Get(id string) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i].Clone(), true
}

// Has reports whether a record with the given id exists
func (c *Collection[T]) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Put appends a record, or replaces it in place when the id is already present
func (c *Collection[T]) Put(record T) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	id := record.RecordID()
	if i, ok := c.index[id]; ok {
		c.items[i] = record
		return
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, record)
}

// Delete removes the record with the given id and reports whether it existed
func (c *Collection[T]) Delete(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.reindex()
	return true
}

// Items returns copies of all records in insertion order
func (c *Collection[T]) Items() []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Clone())
	}
	return out
}

// Clone returns a deep copy of the collection
func (c *Collection[T]) Clone() Collection[T] {
	cloned := Collection[T]{
		items: make([]T, 0, len(c.items)),
		index: make(map[string]int, len(c.items)),
	}
	for i, item := range c.items {
		cloned.items = append(cloned.items, item.Clone())
		cloned.index[item.RecordID()] = i
	}
	return cloned
}

func (c *Collection[T]) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.index[item.RecordID()] = i
	}
}

// MarshalJSON implements json.Marshaler; an empty collection encodes as []
func (c Collection[T]) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON implements json.Unmarshaler. It keeps every record the way Decode does;
// null leaves the collection untouched.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	n := 0
	_, err := c.Decode(data, func() string {
		n++
		return fmt.Sprintf("REC-%d", n)
	})
	return err
}

// DecodeIssue describes a stored record that was kept in repaired form, or skipped when it
// was not an object
type DecodeIssue struct {
	Index  int
	ID     string
	Reason string
}

// idSetter is implemented by pointers to records embedding Base
type idSetter interface {
	SetID(id string)
}

// Decode replaces the collection with the records of a JSON array without dropping any of them.
// Fields of the wrong type are left zero and records without an id, or with an id already
// taken, receive one from newID. Elements that are not objects are skipped. Only data that is
// not an array is an error.
func (c *Collection[T]) Decode(data []byte, newID func() string) ([]DecodeIssue, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	var (
		decoded Collection[T]
		issues  []DecodeIssue
	)
	decoded.items = make([]T, 0, len(elems))
	decoded.index = make(map[string]int, len(elems))

	for i, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			issues = append(issues, DecodeIssue{Index: i, Reason: "not an object, skipped"})
			continue
		}

		var rec T
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			issues = append(issues, DecodeIssue{Index: i, ID: rec.RecordID(), Reason: err.Error()})
		}

		id := rec.RecordID()
		if id == "" || decoded.Has(id) {
			setter, ok := any(&rec).(idSetter)
			if !ok {
				issues = append(issues, DecodeIssue{Index: i, ID: id, Reason: "record has no settable id, skipped"})
				continue
			}
			fresh := newID()
			for decoded.Has(fresh) {
				fresh = newID()
			}
			setter.SetID(fresh)
			reason := "missing id"
			if id != "" {
				reason = "duplicate id " + id
			}
			issues = append(issues, DecodeIssue{Index: i, ID: fresh, Reason: reason + ", assigned " + fresh})
		}
		decoded.Put(rec)
	}

	*c = decoded
	return issues, nil
}
