package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	debug.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("\n"+err.Error()))
		os.Exit(1)
	}
}
