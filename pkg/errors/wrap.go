package errors

import "fmt"

// IOError is a failed file operation on a layout, fixture or database file.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError is undecodable JSON or YAML.
type ParseError struct {
	Format string
	File   string
	Err    error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decode %s %s: %v", e.Format, e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ResourceError is a failed lifecycle step on a store, source or client.
type ResourceError struct {
	Operation string // open, close, start
	Resource  string // store, source, auto-sync
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// WrapIO returns nil for a nil err.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse returns nil for a nil err.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Err: err}
}

// WrapResource returns nil for a nil err.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}
