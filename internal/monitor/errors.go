package monitor

import (
	"fmt"

	"github.com/gitlab-tools/token-monitor/model"
)

// MappingError marks a single malformed upstream record. The record is
// skipped and counted; the rest of the kind fetch proceeds.
type MappingError struct {
	Kind   model.TokenKind
	Name   string
	Reason string
}

func (e *MappingError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("cannot map %s token %q: %s", e.Kind, name, e.Reason)
}
