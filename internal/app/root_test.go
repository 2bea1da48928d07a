package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/config"
	"github.com/vanderheijden86/tsc-err-dirs/pkg/tsc"
)

func TestResolveRoot(t *testing.T) {
	cwd := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cwd, "proj", "src"), 0o755))
	file := filepath.Join(cwd, "proj", "index.ts")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr error
	}{
		{"dot", ".", cwd, nil},
		{"relative", "./proj/src", filepath.Join(cwd, "proj", "src"), nil},
		{"parent", "./proj/src/..", filepath.Join(cwd, "proj"), nil},
		{"absolute", filepath.Join(cwd, "proj"), filepath.Join(cwd, "proj"), nil},
		{"empty", "", "", ErrNoRoot},
		{"bare name", "proj", "", ErrInvalidRoot},
		{"missing", "./nope", "", ErrInvalidRoot},
		{"single file", file, "", ErrSingleFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRoot(tt.arg, cwd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func both(string) []tsc.Engine { return []tsc.Engine{tsc.EngineTSC, tsc.EngineVueTSC} }

func TestResolveEngineFlagWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine = "tsc"
	e, changed, err := ResolveEngine("/p", EngineChoice{Flag: "vue-tsc", Config: &cfg, Available: both})
	require.NoError(t, err)
	assert.Equal(t, tsc.EngineVueTSC, e)
	assert.False(t, changed)

	_, _, err = ResolveEngine("/p", EngineChoice{Flag: "babel"})
	assert.ErrorIs(t, err, tsc.ErrUnknownEngine)
}

func TestResolveEngineFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RememberEngine("/p", "vue-tsc")
	e, changed, err := ResolveEngine("/p", EngineChoice{
		Config:    &cfg,
		Available: both,
		Pick: func([]tsc.Engine) (tsc.Engine, error) {
			t.Fatal("a remembered engine must not prompt")
			return "", nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tsc.EngineVueTSC, e)
	assert.False(t, changed)
}

func TestResolveEngineNoneAvailable(t *testing.T) {
	_, _, err := ResolveEngine("/p", EngineChoice{Available: func(string) []tsc.Engine { return nil }})
	assert.ErrorIs(t, err, tsc.ErrEngineNotFound)
}

func TestResolveEngineSingleCandidate(t *testing.T) {
	e, _, err := ResolveEngine("/p", EngineChoice{
		Available: func(string) []tsc.Engine { return []tsc.Engine{tsc.EngineVueTSC} },
		Pick: func([]tsc.Engine) (tsc.Engine, error) {
			t.Fatal("one candidate needs no prompt")
			return "", nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tsc.EngineVueTSC, e)
}

func TestResolveEnginePicksAndRemembers(t *testing.T) {
	cfg := config.DefaultConfig()
	e, changed, err := ResolveEngine("/p", EngineChoice{
		Config:    &cfg,
		Available: both,
		Pick:      func([]tsc.Engine) (tsc.Engine, error) { return tsc.EngineVueTSC, nil },
	})
	require.NoError(t, err)
	assert.Equal(t, tsc.EngineVueTSC, e)
	assert.True(t, changed)
	assert.Equal(t, "vue-tsc", cfg.EngineFor("/p"))
}

func TestResolveEngineWithoutPickerPrefersTSC(t *testing.T) {
	e, changed, err := ResolveEngine("/p", EngineChoice{Available: both})
	require.NoError(t, err)
	assert.Equal(t, tsc.EngineTSC, e)
	assert.False(t, changed)
}

func TestResolveEnginePickError(t *testing.T) {
	boom := errors.New("user aborted")
	_, _, err := ResolveEngine("/p", EngineChoice{
		Available: both,
		Pick:      func([]tsc.Engine) (tsc.Engine, error) { return "", boom },
	})
	assert.ErrorIs(t, err, boom)
}
