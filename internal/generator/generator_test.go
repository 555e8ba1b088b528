package generator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, models ...string) Config {
	t.Helper()
	return Config{
		Models:  models,
		Output:  t.TempDir(),
		Command: "nativizegen -model door.yaml",
		Version: "test",
		Log:     slog.New(slog.DiscardHandler),
	}
}

func readOutput(t *testing.T, cfg Config, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Output, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	t.Run("writes one file per converted type and the native table", func(t *testing.T) {
		cfg := testConfig(t, "testdata/door.yaml")
		require.NoError(t, Run(context.Background(), cfg))

		door := readOutput(t, cfg, "ADoor_C.cpp")
		require.Contains(t, door, "// Code generated by nativizegen test. DO NOT EDIT.")
		require.Contains(t, door, "// nativizegen -model door.yaml")
		require.Contains(t, door, "ADoor_C::ADoor_C(const FObjectInitializer& ObjectInitializer) : Super(ObjectInitializer)")
		require.Contains(t, door, `CreateDefaultSubobject<UStaticMeshComponent>(TEXT("Body"))`)
		require.Contains(t, door, "OpenAngle = 90.0f;")
		require.Contains(t, door, "State.Mode = EDoorMode::Open;")
		require.Contains(t, door, "void ADoor_C::__StaticDependencies_DirectlyUsedAssets(TArray<FBlueprintDependencyData>& AssetsToLoad)")
		require.Contains(t, door, "struct FRegisterHelper__ADoor_C")
		require.NotContains(t, door, "// constructor")

		state := readOutput(t, cfg, "FDoorState.cpp")
		require.Contains(t, state, "FDoorState::FDoorState()")
		require.Contains(t, state, "Speed = 1.5f;")

		native := readOutput(t, cfg, NativeDependenciesFile)
		require.Contains(t, native, "const FBlueprintDependencyObjectRef& F__NativeDependencies::Get(int16 Index)")
		require.Contains(t, native, `TEXT("SM_Door")`)
	})

	t.Run("output is identical across runs", func(t *testing.T) {
		a := testConfig(t, "testdata/door.yaml")
		b := testConfig(t, "testdata/door.yaml")
		b.Options.Jobs = 1
		require.NoError(t, Run(context.Background(), a))
		require.NoError(t, Run(context.Background(), b))
		for _, name := range []string{"ADoor_C.cpp", "FDoorState.cpp", NativeDependenciesFile} {
			require.Equal(t, readOutput(t, a, name), readOutput(t, b, name), name)
		}
	})

	t.Run("debug labels every section", func(t *testing.T) {
		cfg := testConfig(t, "testdata/door.yaml")
		cfg.Debug = true
		require.NoError(t, Run(context.Background(), cfg))
		door := readOutput(t, cfg, "ADoor_C.cpp")
		require.Contains(t, door, "// constructor\n")
		require.Contains(t, door, "// register helper\n")
	})

	t.Run("only restricts the emitted types", func(t *testing.T) {
		cfg := testConfig(t, "testdata/door.yaml")
		cfg.Options.Only = []string{"FDoorState"}
		require.NoError(t, Run(context.Background(), cfg))
		_, err := os.Stat(filepath.Join(cfg.Output, "ADoor_C.cpp"))
		require.ErrorIs(t, err, os.ErrNotExist)
		readOutput(t, cfg, "FDoorState.cpp")
	})

	t.Run("no selected types is an error", func(t *testing.T) {
		cfg := testConfig(t, "testdata/door.yaml")
		cfg.Options.Only = []string{"AMissing_C"}
		require.ErrorIs(t, Run(context.Background(), cfg), ErrNoTypes)
	})

	t.Run("a failing type does not stop the batch", func(t *testing.T) {
		cfg := testConfig(t, "testdata/door.yaml", "testdata/broken.yaml")
		err := Run(context.Background(), cfg)
		require.ErrorContains(t, err, "ABroken_C")
		readOutput(t, cfg, "ADoor_C.cpp")
		readOutput(t, cfg, NativeDependenciesFile)
		_, statErr := os.Stat(filepath.Join(cfg.Output, "ABroken_C.cpp"))
		require.ErrorIs(t, statErr, os.ErrNotExist)
	})

	t.Run("missing model file", func(t *testing.T) {
		cfg := testConfig(t, "testdata/absent.yaml")
		require.ErrorIs(t, Run(context.Background(), cfg), os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, Run(ctx, testConfig(t, "testdata/door.yaml")), context.Canceled)
	})
}

func TestLoadOptions(t *testing.T) {
	t.Run("reads every setting", func(t *testing.T) {
		opts, err := LoadOptions("testdata/options.yaml")
		require.NoError(t, err)
		require.Equal(t, Options{Server: true, CallChain: true, Wrappers: []string{"FTableRowBase"}, Jobs: 2}, opts)
		require.True(t, opts.wrappers()["FTableRowBase"])
		require.True(t, opts.deps().CallChain)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("async: true\n"), 0o644))
		_, err := LoadOptions(path)
		require.Error(t, err)
	})

	t.Run("rejects negative jobs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jobs: -1\n"), 0o644))
		_, err := LoadOptions(path)
		require.Error(t, err)
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		opts, err := LoadOptions(path)
		require.NoError(t, err)
		require.Zero(t, opts)
	})
}
