package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Literal keys used for rows where the key field is missing or nil.
// Two such rows compare equal to each other.
const (
	AbsentKey = "undefined"
	NilKey    = "null"
)

// NormalizeKey returns the comparison form of the key field of r.
func NormalizeKey(r Record, field string) string {
	v, ok := r.Get(field)
	if !ok {
		return AbsentKey
	}
	return strings.TrimSpace(KeyString(v))
}

// KeyString converts a scalar cell value into its string form.
// Integral floats print without a fraction so 12 and "12" match.
func KeyString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return NilKey
	case string:
		return t
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
