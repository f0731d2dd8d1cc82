// Package httpx holds the request-parsing helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidID    = errors.New("invalid id")
	ErrTrailingData = errors.New("body must contain a single JSON object")
	ErrNotAnObject  = errors.New("body must be a JSON object")
)

// DecodeJSON decodes exactly one JSON value into v and rejects fields v does
// not declare.
func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return decodeOne(dec, v)
}

// DecodeJSONMap decodes a single JSON object into a generic map. Numbers are
// kept as json.Number so that ids and ages survive without float rounding.
func DecodeJSONMap(body io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var out map[string]interface{}
	if err := decodeOne(dec, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotAnObject
	}
	return out, nil
}

func decodeOne(dec *json.Decoder, v interface{}) error {
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// ValidationDetails maps each failing field to the tag it failed.
func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseLimitOffset reads ?limit= and ?offset=, clamping limit to maxLimit.
func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (limit, offset int64, err error) {
	if limit, err = queryInt(values, "limit", defaultLimit, 1); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(values, "offset", 0, 0); err != nil {
		return 0, 0, err
	}
	return min(limit, maxLimit), offset, nil
}

func queryInt(values url.Values, key string, fallback, floor int64) (int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < floor {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
