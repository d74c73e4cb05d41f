package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"
	"strings"
)

// Body is a request payload for write methods.
type Body interface {
	encode() (io.Reader, string, error)
}

// Form is a flat key/value payload sent as application/x-www-form-urlencoded.
// Keys holding nil (or a nil *string) are dropped. Slice values repeat the key.
type Form map[string]any

func (f Form) Values() url.Values {
	vals := url.Values{}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := f[k].(type) {
		case nil:
		case *string:
			if v != nil {
				vals.Add(k, *v)
			}
		case string:
			vals.Add(k, v)
		case []string:
			for _, s := range v {
				vals.Add(k, s)
			}
		case []any:
			for _, s := range v {
				if s != nil {
					vals.Add(k, fmt.Sprint(s))
				}
			}
		default:
			vals.Add(k, fmt.Sprint(v))
		}
	}
	return vals
}

func (f Form) encode() (io.Reader, string, error) {
	return strings.NewReader(f.Values().Encode()), "application/x-www-form-urlencoded", nil
}

// JSON sends Value JSON-encoded instead of form-encoded.
type JSON struct {
	Value any
}

func (j JSON) encode() (io.Reader, string, error) {
	buf, err := json.Marshal(j.Value)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(buf), "application/json", nil
}

// Multipart carries form fields and one file part.
type Multipart struct {
	Fields    Form
	FileField string
	FileName  string
	File      io.Reader
}

func (m Multipart) encode() (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	for k, vs := range m.Fields.Values() {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	if m.File != nil {
		field := m.FileField
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, m.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, m.File); err != nil {
			return nil, "", fmt.Errorf("copy file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
