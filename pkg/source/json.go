package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeJSON walks the token stream instead of unmarshalling into a map so
// that object key order survives.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := jsonValue(dec)
	if err != nil {
		return nil, err
	}

	tok, err := dec.Token()
	switch {
	case err == io.EOF:
		return v, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		return jsonNumber(t)
	default:
		// string, bool or nil
		return t, nil
	}
}

func jsonObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := jsonValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if err := jsonClose(dec); err != nil {
		return nil, err
	}
	return obj, nil
}

func jsonArray(dec *json.Decoder) ([]any, error) {
	items := []any{}
	for dec.More() {
		v, err := jsonValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := jsonClose(dec); err != nil {
		return nil, err
	}
	return items, nil
}

func jsonClose(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// jsonNumber keeps integers that fit in int64 as integers; TOML
// distinguishes them from floats.
func jsonNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %s out of range", n)
	}
	return f, nil
}
