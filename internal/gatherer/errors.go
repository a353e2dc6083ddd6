package gatherer

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is wrapped by RootAccessError when the import root exists
// but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// RootAccessError means the import root could not be opened or enumerated.
// It is the only error a gather pass returns for filesystem problems; errors
// on individual files are absorbed.
type RootAccessError struct {
	Root string
	Err  error
}

func (e *RootAccessError) Error() string {
	if e == nil {
		return "import root inaccessible"
	}
	return fmt.Sprintf("import root %s inaccessible: %v", e.Root, e.Err)
}

func (e *RootAccessError) Unwrap() error { return e.Err }
