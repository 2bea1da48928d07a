package filetree

import "context"

// Validator accepts or rejects a path. It drives both submission and the
// visibility filters. A non-nil error counts as a rejection and, on submit,
// its message is shown to the user.
type Validator interface {
	Validate(ctx context.Context, path string) (bool, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, path string) (bool, error)

// Validate calls f(ctx, path).
func (f ValidatorFunc) Validate(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}

// Filter rewrites a path before it is validated or returned as the answer.
type Filter interface {
	Filter(ctx context.Context, path string) (string, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(ctx context.Context, path string) (string, error)

// Filter calls f(ctx, path).
func (f FilterFunc) Filter(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// TransformInfo describes the entry being rendered.
type TransformInfo struct {
	// IsFinal is true when rendering the answered line.
	IsFinal bool
	IsDir   bool
	IsRoot  bool
}

// Transformer produces the display string for a path.
type Transformer interface {
	Transform(path string, info TransformInfo) string
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(path string, info TransformInfo) string

// Transform calls f(path, info).
func (f TransformerFunc) Transform(path string, info TransformInfo) string {
	return f(path, info)
}

// DirAction is reported to Options.OnDirAction on every open/close.
type DirAction string

const (
	DirOpen  DirAction = "open"
	DirClose DirAction = "close"
)
