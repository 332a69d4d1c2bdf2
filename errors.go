package pagemill

import "fmt"

// FetchError reports a failed read from the content source. The local cache is
// left untouched when this occurs.
type FetchError struct {
	Name string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PersistError reports that fetched content could not be written to the cache.
// The fetched bytes are discarded and must be fetched again on retry.
type PersistError struct {
	Name string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Name, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// ParseError reports a frontmatter block that was opened but never closed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse frontmatter: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TemplateError reports a template syntax error or a failing filter.
type TemplateError struct {
	Err error
}

func (e *TemplateError) Error() string {
	return "render template: " + e.Err.Error()
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
