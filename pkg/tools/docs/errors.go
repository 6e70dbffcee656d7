package docs

import (
	"fmt"
	"strings"
)

// ValidationError reports tool arguments rejected before any request is sent.
type ValidationError struct {
	// Fields lists missing parameters, in declaration order.
	Fields []string
	// Message is set for rejections that are not about missing fields.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch len(e.Fields) {
	case 0:
		return "invalid arguments"
	case 1:
		return e.Fields[0] + " is required"
	case 2:
		return e.Fields[0] + " and " + e.Fields[1] + " are required"
	default:
		head := strings.Join(e.Fields[:len(e.Fields)-1], ", ")
		return fmt.Sprintf("%s, and %s are required", head, e.Fields[len(e.Fields)-1])
	}
}

// required returns a ValidationError naming every field whose value is empty.
// Pairs are given as name, value.
func required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
