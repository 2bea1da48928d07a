package app

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/filetree"
)

var (
	rootStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dirStyle   = lipgloss.NewStyle().Italic(true).Bold(true).Foreground(lipgloss.Color("11"))
)

// promptOptions describes the prompt rooted at target.
func (a *App) promptOptions(target string) filetree.Options {
	return filetree.Options{
		Root:                   target,
		Message:                PromptMessage,
		PageSize:               a.opts.PageSize,
		OnlyShowDir:            a.opts.OnlyShowDir,
		OnlyShowValid:          true,
		HideRoot:               a.opts.HideRoot,
		EnableGoUpperDirectory: a.opts.GoUpperDirectory && target != a.opts.Root,
		Default:                a.lastActive,
		OpenedDirs:             a.openedDirs,
		Validator:              hasErrors(a.set, a.opts.Root),
		Transformer:            errorCounts(a.set, a.opts.Root, target),
		OnDirAction:            a.rememberDir,
	}
}

func (a *App) rememberDir(path string, action filetree.DirAction) {
	if action == filetree.DirOpen {
		a.openedDirs[path] = true
		return
	}
	delete(a.openedDirs, path)
}

// hasErrors accepts paths that hold at least one diagnostic.
func hasErrors(set *diag.Set, root string) filetree.Validator {
	return filetree.ValidatorFunc(func(_ context.Context, path string) (bool, error) {
		return set.HasUnder(root, path), nil
	})
}

// errorCounts labels entries "N errors name", with counts right-aligned to
// the widest total. The prompt root is labelled "root: path".
func errorCounts(set *diag.Set, root, target string) filetree.Transformer {
	width := set.CountWidth()
	return filetree.TransformerFunc(func(path string, info filetree.TransformInfo) string {
		if info.IsRoot || path == target {
			return rootStyle.Render("root: " + path)
		}
		count := runewidth.FillLeft(strconv.Itoa(set.CountUnder(root, path)), width)
		name := filepath.Base(path)
		style := fileStyle
		if info.IsDir {
			name += "/"
			style = dirStyle
		}
		return countStyle.Render(count+" errors") + " " + style.Render(name)
	})
}
