package tsc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/diag"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/metrics"
)

const (
	// BaseConfig is the project config the temporary one is derived from.
	BaseConfig = "tsconfig.json"
	// TempConfig is written next to BaseConfig for the duration of a run.
	TempConfig = "tsconfig.tmp.json"
	// BuildInfoFile is stored in the cache dir so incremental runs are fast.
	BuildInfoFile = "tsconfig.tmp.tsbuildinfo"
)

// ErrNoTSConfig means the project root has no tsconfig.json.
var ErrNoTSConfig = errors.New("tsconfig.json not found")

// Compiler runs one engine over one project root.
type Compiler struct {
	Root   string
	Bin    string
	Engine Engine
	// CacheDir holds the incremental build info. Defaults to the user cache dir.
	CacheDir string
	Runner   Runner
}

// NewCompiler resolves engine from root and returns a ready compiler.
func NewCompiler(root string, e Engine) (*Compiler, error) {
	if e == "" {
		e = EngineTSC
	}
	bin, err := Resolve(root, e)
	if err != nil {
		return nil, err
	}
	return &Compiler{Root: root, Bin: bin, Engine: e, Runner: ExecRunner{}}, nil
}

// Command returns the command line used for a compile, for display.
func (c *Compiler) Command() string {
	return strings.Join(append([]string{string(c.Engine)}, c.args()...), " ")
}

func (c *Compiler) args() []string {
	return []string{"--noEmit", "--pretty", "false", "-p", filepath.Join(c.Root, TempConfig)}
}

func (c *Compiler) cacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tsc-err-dirs")
	}
	return os.TempDir()
}

// WriteTempConfig derives TempConfig from BaseConfig and returns its path.
// emitDeclarationOnly is forced off because it conflicts with --noEmit.
func (c *Compiler) WriteTempConfig() (string, error) {
	raw, err := os.ReadFile(filepath.Join(c.Root, BaseConfig))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w in %s", ErrNoTSConfig, c.Root)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", BaseConfig, err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(StripJSONC(raw), &cfg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", BaseConfig, err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	opts, _ := cfg["compilerOptions"].(map[string]any)
	if opts == nil {
		opts = map[string]any{}
	}
	cache := c.cacheDir()
	if err := os.MkdirAll(cache, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	opts["emitDeclarationOnly"] = false
	opts["incremental"] = true
	opts["tsBuildInfoFile"] = filepath.Join(cache, BuildInfoFile)
	cfg["compilerOptions"] = opts

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", TempConfig, err)
	}
	path := filepath.Join(c.Root, TempConfig)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", TempConfig, err)
	}
	return path, nil
}

// Compile runs the engine and returns its stdout. A non-zero exit status is
// expected whenever the project has errors and is not reported as an error
// unless the compiler printed nothing to stdout.
func (c *Compiler) Compile(ctx context.Context) (string, error) {
	tmp, err := c.WriteTempConfig()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			debug.Log("tsc: removing %s: %v", tmp, err)
		}
	}()

	start := time.Now()
	res, err := c.Runner.Run(ctx, c.Root, c.Bin, c.args()...)
	took := time.Since(start)
	metrics.Compile.Record(took)
	debug.LogTiming("tsc compile", took)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", c.Engine, err)
	}
	if res.ExitCode != 0 && len(strings.TrimSpace(string(res.Stdout))) == 0 {
		return "", fmt.Errorf("%s exited with status %d: %s", c.Engine, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return string(res.Stdout), nil
}

// Check compiles and parses the diagnostics.
func (c *Compiler) Check(ctx context.Context) (*diag.Set, error) {
	out, err := c.Compile(ctx)
	if err != nil {
		return nil, err
	}
	set, err := diag.ParseString(out)
	if err != nil {
		return nil, err
	}
	debug.Log("tsc: %d errors in %d files (%d unparsed blocks)", set.Total(), len(set.Files()), set.Skipped)
	return set, nil
}
