package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// StringArg returns args[key] when it is a string, or "".
func StringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// IntArg returns args[key] as an integer. JSON numbers arrive as float64;
// numeric strings are accepted too.
func IntArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// DateArg parses args[key] as a YYYY-MM-DD date.
func DateArg(args map[string]interface{}, key string) (civil.Date, error) {
	s := StringArg(args, key)
	if s == "" {
		return civil.Date{}, fmt.Errorf("%s is required", key)
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", key, s)
	}
	return d, nil
}

// SlotArgs reads the date, start_hour and end_hour arguments shared by the
// slot tools.
func SlotArgs(args map[string]interface{}) (civil.Date, int, int, error) {
	date, err := DateArg(args, "date")
	if err != nil {
		return civil.Date{}, 0, 0, err
	}
	start, err := IntArg(args, "start_hour")
	if err != nil {
		return civil.Date{}, 0, 0, err
	}
	end, err := IntArg(args, "end_hour")
	if err != nil {
		return civil.Date{}, 0, 0, err
	}
	if start < 0 || end > 24 || start >= end {
		return civil.Date{}, 0, 0, fmt.Errorf("invalid hour range %d-%d: need 0 <= start_hour < end_hour <= 24", start, end)
	}
	return date, start, end, nil
}
