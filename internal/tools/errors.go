package tools

import (
	"fmt"
	"strings"
)

// DispatchError reports a call to a tool that is not registered.
type DispatchError struct {
	Name  string
	Known []string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("unknown tool %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// InvocationError reports a registered tool that rejected its parameters or failed.
type InvocationError struct {
	Tool   string
	Params string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s with %s: %v", e.Tool, e.Params, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
