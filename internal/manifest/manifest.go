// Package manifest reads and rewrites package.json style manifests.
//
// Top-level fields keep their order and raw values across a rewrite; only
// the field being changed is re-encoded. Output is two-space indented with a
// trailing newline.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
	// ErrNoVersion is returned when a release needs a version the manifest lacks.
	ErrNoVersion = errors.New("manifest has no version")
)

// TestPlaceholder is the test script npm init writes.
const TestPlaceholder = "no test specified"

type field struct {
	key   string
	value json.RawMessage
}

// Manifest is a parsed manifest with ordered top-level fields.
type Manifest struct {
	fields []field
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest bytes and validates them against the manifest schema.
func Parse(data []byte) (*Manifest, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object start: %w", err)
	}

	m := &Manifest{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		m.set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after manifest object")
	}
	return m, nil
}

// set replaces the value of key in place, or appends a new field.
func (m *Manifest) set(key string, raw json.RawMessage) {
	for i := range m.fields {
		if m.fields[i].key == key {
			m.fields[i].value = raw
			return
		}
	}
	m.fields = append(m.fields, field{key: key, value: raw})
}

func (m *Manifest) raw(key string) (json.RawMessage, bool) {
	for _, f := range m.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Keys returns the top-level keys in file order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		keys = append(keys, f.key)
	}
	return keys
}

func (m *Manifest) str(key string) string {
	raw, ok := m.raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (m *Manifest) strMap(key string) map[string]string {
	raw, ok := m.raw(key)
	if !ok {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Name returns the package name, or "".
func (m *Manifest) Name() string {
	return m.str("name")
}

// Version returns the version field, or "" when absent.
func (m *Manifest) Version() string {
	return m.str("version")
}

// RequireVersion returns the version or ErrNoVersion.
func (m *Manifest) RequireVersion() (string, error) {
	v := m.Version()
	if strings.TrimSpace(v) == "" {
		return "", ErrNoVersion
	}
	return v, nil
}

// Scripts returns the scripts table.
func (m *Manifest) Scripts() map[string]string {
	return m.strMap("scripts")
}

// Engines returns the engines table.
func (m *Manifest) Engines() map[string]string {
	return m.strMap("engines")
}

// HasRealTestScript reports whether scripts.test is set to something other
// than the npm init placeholder.
func (m *Manifest) HasRealTestScript() bool {
	test := strings.TrimSpace(m.Scripts()["test"])
	return test != "" && !strings.Contains(test, TestPlaceholder)
}

// SetVersion replaces the version field, keeping its position.
func (m *Manifest) SetVersion(version string) {
	raw, _ := json.Marshal(version)
	m.set("version", raw)
}

// Bytes encodes the manifest with two-space indentation and a trailing newline.
func (m *Manifest) Bytes() ([]byte, error) {
	if len(m.fields) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range m.fields {
		key, err := marshalNoEscape(f.key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", f.key, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, f.value, "  ", "  "); err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", f.key, err)
		}
		if i < len(m.fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save writes the manifest to path, keeping the file's permissions.
func (m *Manifest) Save(path string) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
