package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
)

const admissionsInfoKey = "admissionsInfo"

// BuildFunc produces admissions guidance for one record.
type BuildFunc func(name, websiteURL string, levels []level.Level) admissions.Info

// RewriteAdmissions regenerates the admissionsInfo field of every record in the
// file at path. Other fields and their order are kept. Returns the record count.
func RewriteAdmissions(path string, build BuildFunc) (int, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return 0, fmt.Errorf("read dataset: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("decode dataset: %w", err)
	}

	out := make([]object, len(entries))
	for i, entry := range entries {
		obj, err := decodeObject(entry)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		var r record
		if err := json.Unmarshal(entry, &r); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		info, err := encode(build(r.Name, r.WebsiteURL, level.Parse(r.Levels)))
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = obj.set(admissionsInfoKey, info)
	}

	data, err := encodeIndented(out)
	if err != nil {
		return 0, err
	}
	//nolint:gosec // dataset files are world-readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write dataset: %w", err)
	}
	return len(out), nil
}

type member struct {
	key   string
	value json.RawMessage
}

// object is a JSON object that keeps member order.
type object []member

func (o object) set(key string, value json.RawMessage) object {
	for i := range o {
		if o[i].key == key {
			o[i].value = value
			return o
		}
	}
	return append(o, member{key: key, value: value})
}

// MarshalJSON writes the members in order.
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeObject(raw json.RawMessage) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("record is not an object")
	}
	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("read %q: %w", key, err)
		}
		obj = append(obj, member{key: key, value: value})
	}
	return obj, nil
}

// encode marshals v without HTML escaping.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// encodeIndented renders records with two-space indentation and a trailing newline.
func encodeIndented(records []object) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return buf.Bytes(), nil
}
