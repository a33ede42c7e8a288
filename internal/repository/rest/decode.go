package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gymdesk/membership-app/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	schema = newSchema()
)

func newSchema() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parse reads a JSON payload keeping numbers as json.Number.
func parse(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	return payload, nil
}

// convert maps a parsed payload onto out by field type. Numbers that arrive
// as strings, and strings that arrive as numbers, are coerced to whatever
// the destination field declares.
func convert(payload any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			timeHook,
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	return nil
}

// check runs the struct-level schema on a decoded value or on every element
// of a decoded slice.
func check(out any) error {
	v := reflect.Indirect(reflect.ValueOf(out))
	switch v.Kind() {
	case reflect.Struct:
		return checkStruct(v.Addr().Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if reflect.Indirect(elem).Kind() != reflect.Struct {
				continue
			}
			if err := checkStruct(elem.Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func checkStruct(s any) error {
	if err := schema.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	return nil
}

// decode parses, converts and checks a whole payload. Any failure rejects it.
func decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty body", repository.ErrMalformedResponse)
	}
	payload, err := parse(raw)
	if err != nil {
		return err
	}
	if payload == nil {
		return fmt.Errorf("%w: null body", repository.ErrMalformedResponse)
	}
	if err := convert(payload, out); err != nil {
		return err
	}
	return check(out)
}

// Quarantined describes a list item dropped by decodeList.
type Quarantined struct {
	Index int
	Err   error
}

// decodeList decodes a JSON array item by item. Items that fail conversion
// or the schema are left out and reported instead of failing the whole list.
func decodeList[T any](raw []byte) ([]T, []Quarantined, error) {
	payload, err := parse(raw)
	if err != nil {
		return nil, nil, err
	}
	if payload == nil {
		return []T{}, nil, nil
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: expected an array, got %T", repository.ErrMalformedResponse, payload)
	}

	out := make([]T, 0, len(items))
	var dropped []Quarantined
	for i, item := range items {
		var v T
		if err := convert(item, &v); err != nil {
			dropped = append(dropped, Quarantined{Index: i, Err: err})
			continue
		}
		if err := check(&v); err != nil {
			dropped = append(dropped, Quarantined{Index: i, Err: err})
			continue
		}
		out = append(out, v)
	}
	return out, dropped, nil
}

func decimalHook(from, to reflect.Type, data any) (any, error) {
	switch to {
	case reflect.PointerTo(decimalType):
		if isBlank(data) {
			return nil, nil
		}
		return data, nil
	case decimalType:
	default:
		return data, nil
	}

	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return nil, fmt.Errorf("cannot read %v (%s) as an amount", data, from)
	}
}

func timeHook(from, to reflect.Type, data any) (any, error) {
	switch to {
	case reflect.PointerTo(timeType):
		if isBlank(data) {
			return nil, nil
		}
		return data, nil
	case timeType:
	default:
		return data, nil
	}

	switch v := data.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("cannot read %q as a timestamp", v)
	case time.Time:
		return v.UTC(), nil
	default:
		return nil, fmt.Errorf("cannot read %v (%s) as a timestamp", data, from)
	}
}

func isBlank(data any) bool {
	if data == nil {
		return true
	}
	s, ok := data.(string)
	return ok && strings.TrimSpace(s) == ""
}
