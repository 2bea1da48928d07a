package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/tsc-err-dirs/internal/app"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/config"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/report"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/ui"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/version"
)

// flags holds the command line values. Zero values mean "use the config".
type flags struct {
	engine     string
	pageSize   int
	noWatch    bool
	debug      bool
	configPath string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "tsc-err-dirs <dir>",
		Short: "Browse TypeScript compile errors by directory",
		Long: `tsc-err-dirs compiles a TypeScript project and shows a file tree of the
directories and files that contain errors, with the error count next to
each entry. Pick a file to print its errors; the tree refreshes whenever
a .ts or .tsx file changes.

The directory must be absolute or start with "." (relative to the
current directory).`,
		Example: `  tsc-err-dirs .
  tsc-err-dirs ./packages/web --engine vue-tsc`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), dir, f)
		},
	}
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "compiler engine: tsc or vue-tsc (default from config, else auto)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "entries per page in the file tree (default from config: 20)")
	cmd.Flags().BoolVar(&f.noWatch, "no-watch", false, "don't recompile when source files change")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "write debug logs (see "+debug.EnvFile+")")
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to the YAML config file (default "+config.ConfigPath()+")")
	cmd.SetVersionTemplate("tsc-err-dirs {{.Version}}\n")
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(f flags) (config.Config, string, error) {
	path := f.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, path, err
	}
	if f.pageSize > 0 {
		cfg.PageSize = f.pageSize
	}
	return cfg, path, nil
}

func run(ctx context.Context, out io.Writer, dir string, f flags) error {
	if f.debug {
		debug.SetEnabled(true)
	}
	defer debug.LogEnterExit("run")()

	cfg, cfgPath, err := loadConfig(f)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := app.ResolveRoot(dir, cwd)
	if err != nil {
		return err
	}

	printer := report.New(out)
	printer.Header(version.Version)

	choice := app.EngineChoice{Flag: f.engine, Config: &cfg}
	if ui.IsTerminal(os.Stdin) {
		choice.Pick = ui.PickEngine
	}
	engine, changed, err := app.ResolveEngine(root, choice)
	if err != nil {
		return err
	}
	if changed {
		if err := config.SaveTo(cfg, cfgPath); err != nil {
			debug.Log("main: saving engine choice: %v", err)
		}
	}

	checker, err := app.NewChecker(ctx, root, engine, cfg.CacheDir)
	if err != nil {
		return err
	}

	session := app.New(app.Options{
		Root:             root,
		Watch:            !f.noWatch,
		PageSize:         cfg.PageSize,
		OnlyShowDir:      cfg.Prompt.OnlyShowDir,
		HideRoot:         cfg.Prompt.HideRoot,
		GoUpperDirectory: cfg.GoUpperDirectory(),
		DebounceDuration: cfg.DebounceDuration(),
		PollInterval:     cfg.PollInterval(),
		ForcePoll:        cfg.Watch.ForcePoll,
	}, checker, printer)
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("%s: %w", root, err)
	}
	return nil
}
