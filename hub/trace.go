package hub

import (
	"fmt"

	"github.com/pkg/errors"
)

// trace renders err with the stack of the caller that caught it.
func trace(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", errors.WithStack(err))
}
