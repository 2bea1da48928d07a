package filetree

// DefaultPageSize is the number of rows shown when Options.PageSize is unset.
const DefaultPageSize = 10

// Options configures a Navigator. Only Root is required.
type Options struct {
	// Root is the directory displayed as the tree root.
	Root string
	// Message is the question line printed above the tree.
	Message string
	// PageSize is the number of visible rows per frame.
	PageSize int

	// OnlyShowDir hides files; files can never be valid.
	OnlyShowDir bool
	// OnlyShowValid drops entries that are invalid and have no valid descendant.
	OnlyShowValid bool
	// HideChildrenOfValid empties the children of valid directories.
	HideChildrenOfValid bool
	// HideRoot renders the root's children at top level instead of the root itself.
	HideRoot bool
	// EnableGoUpperDirectory adds a ".." entry that rebases the root on Space.
	EnableGoUpperDirectory bool

	// Default is expanded to and made active on the first render.
	Default string
	// OpenedDirs are expanded as soon as they are loaded.
	OpenedDirs map[string]bool

	Validator   Validator
	Filter      Filter
	Transformer Transformer

	// OnDirAction is told about every open/close transition.
	OnDirAction func(path string, action DirAction)

	// Reader lists directories; OSReader when nil.
	Reader DirReader
	// Styles overrides DefaultStyles.
	Styles *Styles
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

func (o Options) styles() Styles {
	if o.Styles != nil {
		return *o.Styles
	}
	return DefaultStyles()
}

func (o Options) renderOptions(width int, final bool) RenderOptions {
	return RenderOptions{
		OnlyShowDir: o.OnlyShowDir,
		HideRoot:    o.HideRoot,
		Transformer: o.Transformer,
		Styles:      o.styles(),
		Width:       width,
		Final:       final,
	}
}
