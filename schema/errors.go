package schema

import "fmt"

// ShapeError reports a dynamic node that claims a kind but lacks the structure
// that kind requires (for example a "not" node with nothing to negate).
type ShapeError struct {
	Path    string
	Kind    Kind
	Message string
}

func (e *ShapeError) Error() string {
	if e == nil {
		return "schema shape error"
	}
	return fmt.Sprintf("schema shape error at %s (%s): %s", pathOrRoot(e.Path), e.Kind, e.Message)
}

func shapeErr(path string, kind Kind, format string, args ...any) error {
	return &ShapeError{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
