package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ssargent/nodestate/pkg/api"
	"github.com/ssargent/nodestate/pkg/config"
	"github.com/ssargent/nodestate/pkg/di"
	"github.com/ssargent/nodestate/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSource = `
// peano addition
(Add {Succ a} b) = {Succ (Add a b)}
(Add {Zero} b)   = b

(Id x) = x
`

type testEnv struct {
	root       string
	configPath string
	cfg        *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(root, "heap")
	cfg.ArchiveDir = filepath.Join(root, "archive")
	cfg.Storage.Fsync = false
	cfg.Storage.Compression = "lz4"
	cfg.Logging.Level = "error"

	configPath := filepath.Join(root, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	SetContainer(di.NewContainer())
	return &testEnv{root: root, configPath: configPath, cfg: cfg}
}

func (e *testEnv) writeSource(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(e.root, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0600))
	return path
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// run executes the command tree with the env's config file.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("from file", func(t *testing.T) {
		out, err := env.run(t, "", "check", env.writeSource(t, "funcs.hvm", testSource))
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Regexp(t, `Add\s+2\s+2\s+\[0\]`, out)
		assert.Regexp(t, `Id\s+1\s+1\s+\[\]`, out)
	})

	t.Run("from stdin", func(t *testing.T) {
		out, err := env.run(t, testSource, "check", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "Add")
	})
}

func TestCheckCommand_Errors(t *testing.T) {
	env := setupTestEnv(t)

	testCases := []struct {
		name    string
		source  string
		path    string
		wantErr string
	}{
		{
			name:    "syntax error",
			source:  "(Add a b = a",
			wantErr: "funcs.hvm",
		},
		{
			name:    "uncompilable",
			source:  "(Dup x x) = x",
			wantErr: "funcs.hvm",
		},
		{
			name:    "empty source",
			source:  "// nothing here\n",
			wantErr: "no functions",
		},
		{
			name:    "missing file",
			path:    "/does/not/exist.hvm",
			wantErr: `cannot read from "/does/not/exist.hvm"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path
			if path == "" {
				path = env.writeSource(t, "funcs.hvm", tc.source)
			}
			_, err := env.run(t, "", "check", path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDeployAndArchive(t *testing.T) {
	env := setupTestEnv(t)
	source := env.writeSource(t, "funcs.hvm", testSource)

	out, err := env.run(t, "", "deploy", source, "--owner", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "deployed Add")
	assert.Contains(t, out, "deployed Id")
	assert.True(t, state.Exists(env.cfg.DataDir))

	// a second deploy of the same names leaves the heap unchanged
	_, err = env.run(t, "", "deploy", source, "--owner", "7")
	assert.ErrorIs(t, err, state.ErrAlreadyDeployed)

	_, err = env.run(t, "", "deploy", source, "--owner", "not-a-number")
	assert.Error(t, err)

	out, err = env.run(t, "", "inspect", "--json")
	require.NoError(t, err)
	var summary api.HeapSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, []string{"Add", "Id"}, summary.Functions)
	assert.Equal(t, "0", summary.Tick)

	heap, err := state.Load(env.cfg.DataDir)
	require.NoError(t, err)
	for _, owner := range heap.Ownr {
		assert.Equal(t, "42", owner.String())
	}

	out, err = env.run(t, "", "archive", "put")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = env.run(t, "", "archive", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	restored := filepath.Join(env.root, "restored")
	out, err = env.run(t, "", "archive", "get", id, "--out", restored)
	require.NoError(t, err)
	assert.Contains(t, out, "restored "+id)

	out, err = env.run(t, "", "inspect", "--json=false", "--data-dir", restored)
	require.NoError(t, err)
	assert.Contains(t, out, "functions: Add, Id")
	assert.Contains(t, out, "digest:    "+summary.Digest)

	_, err = env.run(t, "", "archive", "delete", id)
	require.NoError(t, err)
	out, err = env.run(t, "", "archive", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	_, err = env.run(t, "", "archive", "get", "bogus", "--out", restored)
	assert.Error(t, err)
}

func TestInspectCommand_MissingHeap(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "", "inspect", "--json=false", "--data-dir", filepath.Join(env.root, "nope"))
	assert.ErrorIs(t, err, state.ErrMissingField)
}

type recordingStarter struct {
	config api.ServerConfig
	called bool
}

func (r *recordingStarter) StartServer(ctx context.Context, archive api.SnapshotStore, config api.ServerConfig, logger *zap.Logger) error {
	r.called = true
	r.config = config
	_, err := archive.List()
	return err
}

func TestServeCommand(t *testing.T) {
	env := setupTestEnv(t)
	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerStarter(starter)
	SetContainer(c)

	_, err := env.run(t, "", "serve", "--port", "9123", "--bind", "0.0.0.0")
	require.NoError(t, err)
	assert.True(t, starter.called)
	assert.Equal(t, 9123, starter.config.Port)
	assert.Equal(t, "0.0.0.0", starter.config.Bind)
	assert.Equal(t, env.cfg.DataDir, starter.config.HeapDir)
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "nodestate.yaml")
	env := &testEnv{root: root, configPath: configPath}

	out, err := env.run(t, "", "init", "--root", filepath.Join(root, "node"), "--force=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+configPath)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "node", "heap"), cfg.DataDir)

	out, err = env.run(t, "", "init", "--root", filepath.Join(root, "node"), "--force=false")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestResolveConfig_LogLevelOverride(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "", "inspect", "--json=false", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid configuration")
}
