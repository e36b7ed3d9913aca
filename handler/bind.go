package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
)

// maxJSONBody caps request bodies read by BindJSON.
const maxJSONBody = 1 << 20

// BindJSON decodes an application/json body into the request struct.
func BindJSON() Bind {
	return func(r *http.Request, v any) error {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			return ErrUnsupportedMedia
		}

		dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			}
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}

// BindPath fills string fields tagged `path:"name"` using extractor,
// typically chi.URLParam.
func BindPath(extractor func(r *http.Request, name string) string) Bind {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidPath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			field := rt.Field(i)
			name := field.Tag.Get("path")
			if name == "" || name == "-" || !rv.Field(i).CanSet() {
				continue
			}
			if field.Type.Kind() != reflect.String {
				return fmt.Errorf("%w: field %s must be a string", ErrInvalidPath, field.Name)
			}
			rv.Field(i).SetString(extractor(r, name))
		}
		return nil
	}
}
