package rivbin

import (
	"reflect"
	"unicode"
)

// isFieldHidden reports whether a struct field is skipped by the codec:
// embedded fields, the blank identifier, and unexported fields all stay
// out of the wire format.
func isFieldHidden(val reflect.Value, index int) bool {
	field := val.Type().Field(index)
	if field.Anonymous {
		return true
	}
	name := field.Name
	return name == "_" || unicode.IsLower(rune(name[0]))
}
