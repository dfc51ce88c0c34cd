package common

import (
	"fmt"
	"strconv"
)

// StringArg returns the string value of key, or "" if the
// argument is absent or not a string.
func StringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// BoolArg returns the boolean value of key. Clients that send booleans as
// strings ("true", "false") are accepted. Absent arguments yield def.
func BoolArg(args map[string]interface{}, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}

	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		if val == "" {
			return def, nil
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return def, fmt.Errorf("%s must be a boolean, got %q", key, val)
		}
		return b, nil
	default:
		return def, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
}
