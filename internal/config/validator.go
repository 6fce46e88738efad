package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

type UnknownFieldError struct {
	Field string
	Type  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q for type %s", e.Field, e.Type)
}

// fieldValidator rejects JSON keys that name no field of its struct type, so
// a typo in a settings file fails loudly instead of silently defaulting.
type fieldValidator struct {
	fields map[string]struct{}
	typ    string
}

func newFieldValidator(example any) *fieldValidator {
	t := reflect.TypeOf(example)
	fields := make(map[string]struct{}, t.NumField())

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")

		if name == "-" {
			continue
		}

		if name == "" {
			name = f.Name
		}

		fields[strings.ToLower(name)] = struct{}{}
	}

	return &fieldValidator{fields: fields, typ: t.Name()}
}

func (f *fieldValidator) Validate(bs []byte) error {
	var doc map[string]json.RawMessage

	if err := json.Unmarshal(bs, &doc); err != nil {
		return err
	}

	var unknown []string

	for k := range doc {
		if _, ok := f.fields[k]; !ok {
			unknown = append(unknown, k)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	// map order is random, report the alphabetically first offender
	slices.Sort(unknown)

	return &UnknownFieldError{Field: unknown[0], Type: f.typ}
}
