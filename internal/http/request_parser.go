// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading request bodies and query
// parameters. Bodies are JSON objects; form-encoded bodies are accepted too.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned for bodies that cannot be decoded.
var ErrInvalidBody = errors.New("request body must be a JSON object")

// RequestBodyParser reads the body once and exposes its fields as trimmed strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	return p
}

// Parse decodes the body as a JSON object, or as form data when the content
// type says so. Any failure is reported as ErrInvalidBody.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", ErrInvalidBody, p.err)
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if strings.HasPrefix(p.contentType, "application/x-www-form-urlencoded") {
		p.formData, p.err = url.ParseQuery(string(trimmed))
		if p.err != nil {
			p.err = fmt.Errorf("%w: %v", ErrInvalidBody, p.err)
		}
		return p.err
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		p.err = ErrInvalidBody
		return p.err
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	data := make(map[string]any)
	if err := dec.Decode(&data); err != nil {
		p.err = fmt.Errorf("%w: %v", ErrInvalidBody, err)
		return p.err
	}
	if dec.More() {
		p.err = fmt.Errorf("%w: trailing data", ErrInvalidBody)
		return p.err
	}
	p.jsonData = data
	return nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// stringValue converts a decoded JSON value to string. Values of other types
// become empty and fail field validation.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, then trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// queryUserID returns the userId query parameter.
func queryUserID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}

// parseIntParam reads an optional integer query parameter.
func parseIntParam(query url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return n, nil
}
