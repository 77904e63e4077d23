package util

import (
	"strconv"
	"strings"
)

// StrInterfaceToInt converts JSON numbers and numeric strings to int.
// Anything else yields 0.
func StrInterfaceToInt(t interface{}) (i int) {
	switch t := t.(type) {
	case string:
		s := strings.TrimSpace(t)
		if v, err := strconv.Atoi(s); err == nil {
			i = v
		} else if f, err := strconv.ParseFloat(s, 64); err == nil {
			i = int(f)
		}
	case float32:
		i = int(t)
	case float64:
		i = int(t)
	case int:
		i = t
	case int64:
		i = int(t)
	}
	return i
}

