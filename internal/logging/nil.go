package logging

import (
	"fmt"
	"reflect"
)

// isNil reports whether v is nil or a typed nil pointer.
func isNil(v fmt.Stringer) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
