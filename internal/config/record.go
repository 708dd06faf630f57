package config

import (
	"fmt"
	"os"
	"strings"
)

// Record is a flat KEY=value file preserving key order across rewrites.
// Comment and blank lines are dropped on save; the record is data, not a
// hand-edited document, once provisioning has run.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// LoadRecord reads the record at path. A missing file yields an empty
// record; provisioning starts from nothing and fills it in.
func LoadRecord(path string) (*Record, error) {
	r := NewRecord()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: not a KEY=value line: %q", path, i+1, line)
		}
		r.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return r, nil
}

// Save rewrites the record wholesale, keys in their original order with
// appended keys last.
func (r *Record) Save(path string) error {
	var b strings.Builder
	for _, key := range r.keys {
		fmt.Fprintf(&b, "%s=%s\n", key, r.values[key])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores key=value. An existing key keeps its position; a new key is
// appended.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the keys in record order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}
