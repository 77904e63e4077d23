package jsonhelper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sopor/plugin.video.retrospect/util"
)

// JsonHelper wraps a decoded JSON document for path lookups.
type JsonHelper struct {
	Data interface{}
}

func New(data string) (*JsonHelper, error) {
	var v interface{}
	d := json.NewDecoder(strings.NewReader(data))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return nil, fmt.Errorf("jsonhelper: %w", err)
	}
	return &JsonHelper{Data: normalise(v)}, nil
}

func FromValue(v interface{}) *JsonHelper {
	return &JsonHelper{Data: v}
}

// numbers come back as float64 or int so util.StrInterfaceToInt handles them
func normalise(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalise(e)
		}
	case []interface{}:
		for i, e := range t {
			t[i] = normalise(e)
		}
	}
	return v
}

// GetValue walks path: strings index objects, ints index arrays. An empty
// path returns the root.
func (j *JsonHelper) GetValue(path ...interface{}) (interface{}, error) {
	current := j.Data
	for _, key := range path {
		switch k := key.(type) {
		case string:
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("jsonhelper: %q on non-object", k)
			}
			v, ok := obj[k]
			if !ok {
				return nil, fmt.Errorf("jsonhelper: key %q not found", k)
			}
			current = v
		case int:
			arr, ok := current.([]interface{})
			if !ok {
				return nil, fmt.Errorf("jsonhelper: index %d on non-array", k)
			}
			if k < 0 {
				k += len(arr)
			}
			if k < 0 || k >= len(arr) {
				return nil, fmt.Errorf("jsonhelper: index %d out of range", k)
			}
			current = arr[k]
		default:
			return nil, fmt.Errorf("jsonhelper: unsupported path element %v", key)
		}
	}
	return current, nil
}

// AsList returns arrays unchanged, nil as an empty list, anything else as a
// single element list.
func AsList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}

// Object is a JSON object with typed accessors.
type Object map[string]interface{}

func (o Object) String(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (o Object) Int(key string) int {
	return util.StrInterfaceToInt(o[key])
}

func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o Object) Object(key string) Object {
	m, _ := o[key].(map[string]interface{})
	return Object(m)
}

// ToObject returns v as an Object, or nil when it is not a JSON object.
func ToObject(v interface{}) Object {
	switch t := v.(type) {
	case map[string]interface{}:
		return Object(t)
	case Object:
		return t
	}
	return nil
}
