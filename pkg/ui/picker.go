package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/tsc"
)

var engineLabels = map[tsc.Engine]string{
	tsc.EngineTSC:    "tsc (TypeScript)",
	tsc.EngineVueTSC: "vue-tsc (Vue single file components)",
}

// engineForm builds the picker; the selection is written to *choice.
func engineForm(engines []tsc.Engine, choice *tsc.Engine) *huh.Form {
	options := make([]huh.Option[tsc.Engine], 0, len(engines))
	for _, e := range engines {
		label, ok := engineLabels[e]
		if !ok {
			label = string(e)
		}
		options = append(options, huh.NewOption(label, e))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[tsc.Engine]().
				Title("Which compiler should check this project?").
				Options(options...).
				Value(choice),
		),
	).WithTheme(huh.ThemeDracula())
	if !IsTerminal(os.Stdin) {
		form = form.WithAccessible(true)
	}
	return form
}

// PickEngine asks the user to choose among engines. A single candidate is
// returned without asking.
func PickEngine(engines []tsc.Engine) (tsc.Engine, error) {
	switch len(engines) {
	case 0:
		return "", tsc.ErrEngineNotFound
	case 1:
		return engines[0], nil
	}
	choice := engines[0]
	if err := engineForm(engines, &choice).Run(); err != nil {
		return "", fmt.Errorf("choosing engine: %w", err)
	}
	return choice, nil
}
