package models

import "fmt"

// BackendError is a logical failure reported by the backend (ok:false).
type BackendError struct {
	Action  string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Action, e.Message)
}
