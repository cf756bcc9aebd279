package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/blobsearch/config"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// testApp returns the app with captured output and exit handling disabled.
func testApp() (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, &out, &errOut
}

// writeConfig writes a config for a local container holding files and an
// on-disk embedded index, returning its path.
func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, "data", "docs", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "docs"), 0o755))

	cfg := config.Default()
	cfg.Store.Root = filepath.Join(dir, "data")
	cfg.Store.Container = "docs"
	cfg.Store.GrantSecret = "test-secret"
	cfg.Index.Path = filepath.Join(dir, "index")
	cfg.Index.Name = "docs"
	cfg.Extractor.Type = "loader"
	cfg.Pipeline.ResetAttempts = 1

	path := filepath.Join(dir, "blobsearch.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func findFlag(flags []cli.Flag, name string) cli.Flag {
	for _, f := range flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	return nil
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level has default value and alias", func(t *testing.T) {
		f, ok := findFlag(app.Flags, "l").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, "log-level", f.Name)
		assert.Equal(t, "info", f.Value)
	})

	t.Run("secrets are read from the environment", func(t *testing.T) {
		f, ok := findFlag(app.Flags, "store-key").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, []string{"AZURE_STORAGE_KEY"}, f.EnvVars)

		f, ok = findFlag(app.Flags, "search-api-key").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, []string{"AZURE_SEARCH_API_KEY"}, f.EnvVars)
	})

	t.Run("run has strict flag", func(t *testing.T) {
		cmd := findCommand(app, "run")
		require.NotNil(t, cmd)
		f, ok := findFlag(cmd.Flags, "strict").(*cli.BoolFlag)
		require.True(t, ok)
		assert.False(t, f.Value)
	})

	t.Run("every command is registered", func(t *testing.T) {
		for _, name := range []string{"run", "list", "search", "suggest", "schema", "init"} {
			assert.NotNil(t, findCommand(app, name), name)
		}
	})
}

func TestInvalidLogLevel(t *testing.T) {
	app, _, _ := testApp()
	err := app.Run([]string{"blobsearch", "--log-level", "loud", "schema"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSchemaCommand(t *testing.T) {
	app, out, _ := testApp()
	path := writeConfig(t, nil)

	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "schema"}))
	assert.Contains(t, out.String(), `"name": "docs"`)
	assert.Contains(t, out.String(), "metadata_storage_path")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "blobsearch.yaml")

	app, _, _ := testApp()
	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "init"}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	require.NoError(t, cfg.Validate(), "the written config is runnable")

	app, _, _ = testApp()
	err = app.Run([]string{"blobsearch", "-c", path, "init"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestListCommand(t *testing.T) {
	path := writeConfig(t, map[string]string{
		"reports/q1.txt": "first quarter",
		"reports/q2.txt": "second quarter",
		"notes.txt":      "misc",
	})

	app, out, errOut := testApp()
	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "list", "--prefix", "reports/"}))
	assert.Equal(t, "reports/q1.txt\nreports/q2.txt\n", out.String())
	assert.Contains(t, errOut.String(), "2 document(s)")
}

func TestRunThenSearch(t *testing.T) {
	path := writeConfig(t, map[string]string{
		"a.txt": "Quarterly report written in Lisbon",
		"b.txt": "Minutes of the Porto meeting",
	})

	app, _, errOut := testApp()
	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "run", "--strict", "--parallelism", "2"}))
	assert.Contains(t, errOut.String(), "indexed 2 of 2 documents")

	app, out, _ := testApp()
	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "search", "lisbon"}))
	assert.Contains(t, out.String(), "a.txt")
	assert.NotContains(t, out.String(), "b.txt")

	app, _, _ = testApp()
	err := app.Run([]string{"blobsearch", "-c", path, "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")

	app, _, _ = testApp()
	require.NoError(t, app.Run([]string{"blobsearch", "-c", path, "suggest", "li"}))

	app, _, _ = testApp()
	err = app.Run([]string{"blobsearch", "-c", path, "suggest"})
	require.Error(t, err)
}

func TestRunFatalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobsearch.yaml")
	cfg := config.Default()
	cfg.Store.Type = "ftp"
	require.NoError(t, config.Save(path, cfg))

	app, _, _ := testApp()
	err := app.Run([]string{"blobsearch", "-c", path, "run"})
	require.Error(t, err)

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitFatal, exitErr.ExitCode())
}

func TestExitCode(t *testing.T) {
	clean := &ingestion.Summary{Enumerated: 3, Completed: 3, Indexed: 3}
	failed := &ingestion.Summary{Enumerated: 3, Completed: 3, Indexed: 2, DocumentErrors: 1}
	fatal := &core.FatalSetupError{Stage: core.StageIndexReset, Err: errors.New("unreachable")}

	tests := []struct {
		name    string
		summary *ingestion.Summary
		err     error
		strict  bool
		want    int
	}{
		{"clean run", clean, nil, false, 0},
		{"clean strict run", clean, nil, true, 0},
		{"isolated failures are tolerated", failed, nil, false, 0},
		{"isolated failures fail strict runs", failed, nil, true, exitFailed},
		{"fatal setup error", nil, fatal, false, exitFatal},
		{"cancelled run keeps fatal status", failed, fatal, true, exitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.summary, tt.err, tt.strict))
		})
	}
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b", snippet("a\n  b", 10))
	assert.Equal(t, "héll...", snippet("héllo world", 4))
}
