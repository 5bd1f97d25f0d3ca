package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "text",
			args: []string{"version"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "🚀 patchrc version info:")
				assert.Contains(t, out, runtime.Version())
			},
		},
		{
			name: "json",
			args: []string{"version", "--json"},
			check: func(t *testing.T, out string) {
				var info VersionInfo
				require.NoError(t, json.Unmarshal([]byte(out), &info))
				assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
				assert.NotEmpty(t, info.Version)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &opts.RootOpts{Logger: log.New(&bytes.Buffer{}, zerolog.Disabled)}
			cmd := newRootCmd(o)

			out := &bytes.Buffer{}
			cmd.SetOut(out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.ExecuteContext(context.Background()))

			tt.check(t, out.String())
		})
	}
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "rules.yaml")
	target := filepath.Join(dir, "greeting.txt")

	require.NoError(t, os.WriteFile(config, []byte("rules:\n  - name: greet\n    literal:\n      old: Hello\n      new: Hi\n"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("Hello, world\n"), 0o644))

	o := &opts.RootOpts{Logger: log.New(&bytes.Buffer{}, zerolog.Disabled)}
	cmd := newRootCmd(o)
	cmd.SetArgs([]string{"apply", "--config", config, target})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, config, o.ConfigFile)
	require.NotNil(t, o.Config)
	assert.Len(t, o.Rules, 1)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Hi, world\n", string(got))
}

func TestRootCmd_DefaultConfig(t *testing.T) {
	o := &opts.RootOpts{Logger: log.New(&bytes.Buffer{}, zerolog.Disabled)}
	cmd := newRootCmd(o)

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, ".patchrc.yaml", flag.DefValue)
	assert.Equal(t, "c", flag.Shorthand)
}
