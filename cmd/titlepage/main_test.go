// cmd/titlepage/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
)

const sampleConfig = `
AllowedHosts: "*"
LogicConfiguration:
  SomeIp: 192.168.10.234
  SomeEmail: john.doe@gmail.com
DatabaseConnection: "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;"
`

type staticProvider struct {
	values map[string]string
	err    error
}

func (p staticProvider) Name() string { return "redis:test" }

func (p staticProvider) Fetch(context.Context) (map[string]string, error) {
	return p.values, p.err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	return path
}

func execute(t *testing.T, o *rootOptions, args ...string) (string, error) {
	t.Helper()
	if o == nil {
		o = &rootOptions{
			newRemote: func(string, string) (domainconfig.RemoteProvider, error) {
				return nil, errors.New("no remote in tests")
			},
		}
	}

	var out bytes.Buffer
	cmd := newRootCmdWithOptions(o)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func valuesByKey(t *testing.T, output string) map[string]string {
	t.Helper()
	var entries []domainconfig.FlatEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values
}

func TestMaskCmd(t *testing.T) {
	out, err := execute(t, nil, "mask", "192.168.10.234", "abcdef", "john.doe@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "19*.*.*.*34\na*****f\nj*****oe@***.com\n", out)
}

func TestMaskCmdNeedsValue(t *testing.T) {
	_, err := execute(t, nil, "mask")
	assert.Error(t, err)
}

func TestObfuscateCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "partial",
			args: []string{"obfuscate", "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;"},
			want: "Server=tcp*****net,1433;Database=[hidden];User Id=[hidden];Password=[hidden];\n",
		},
		{
			name: "full",
			args: []string{"obfuscate", "--full", "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;"},
			want: "Server=[hidden];Database=[hidden];User Id=[hidden];Password=[hidden];\n",
		},
		{
			name: "local password hidden by default",
			args: []string{"obfuscate", `Server=.\SQLExpress;Database=MyDb;User Id=sa;Password=Secret1;`},
			want: "Server=.\\SQLExpress;Database=MyDb;User Id=sa;Password=[hidden];\n",
		},
		{
			name: "local password revealed on request",
			args: []string{"obfuscate", "--reveal-local-password", `Server=.\SQLExpress;Password=Secret1`},
			want: "Server=.\\SQLExpress;Password=Secret1;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConfigCmdJSON(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, nil, "config", "--config", path, "--output", "json")
	require.NoError(t, err)

	values := valuesByKey(t, out)
	assert.Equal(t, "*", values["allowedhosts ("+path+")"])
	assert.Equal(t, "19*.*.*.*34", values["logicconfiguration/someip ("+path+")"])
	assert.Equal(t, "j*****oe@***.com", values["logicconfiguration/someemail ("+path+")"])
	assert.Equal(t,
		"Server=tcp*****net,1433;Database=[hidden];User Id=[hidden];Password=[hidden];",
		values["databaseconnection ("+path+")"],
	)
	assert.Equal(t, "8080", values["server/http/port (SYS/MEM)"])
	assert.NotContains(t, out, "Secret1")
}

func TestConfigCmdLayers(t *testing.T) {
	path := writeConfig(t)
	t.Setenv("TITLEPAGE_ALLOWEDHOSTS", "example.com")

	o := &rootOptions{
		newRemote: func(url, key string) (domainconfig.RemoteProvider, error) {
			assert.Equal(t, "redis://localhost:6379/0", url)
			assert.Equal(t, "titlepage", key)
			return staticProvider{values: map[string]string{"Feature:Banner": "on"}}, nil
		},
	}

	out, err := execute(t, o,
		"config",
		"--config", path,
		"--redis-url", "redis://localhost:6379/0",
		"--server.http.port", "9090",
		"--whitelist", "allowedhosts,feature,server",
		"-o", "json",
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"allowedhosts (ENV)":                  "example.com",
		"feature/banner (Azure AppCfg)":       "on",
		"server/http/port (CMD)":              "9090",
		"server/http/read_timeout (SYS/MEM)":  "15s",
		"server/http/write_timeout (SYS/MEM)": "15s",
	}, valuesByKey(t, out))
}

func TestConfigCmdTable(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, nil, "config", "-c", path, "--whitelist", "logicconfiguration")
	require.NoError(t, err)

	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "logicconfiguration/someip")
	assert.Contains(t, out, "19*.*.*.*34")
	assert.NotContains(t, out, "allowedhosts")
}

func TestConfigCmdTableEmpty(t *testing.T) {
	out, err := execute(t, nil, "config", "--whitelist", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration values are hidden for security purposes.")
}

func TestConfigCmdHTML(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, nil,
		"config", "-c", path,
		"--name", "orders-api",
		"--titlepage.environment", "Staging",
		"-o", "html",
	)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<!DOCTYPE html>"), out)
	assert.Contains(t, out, "orders-api")
	assert.Contains(t, out, "Staging")
	assert.Contains(t, out, "19*.*.*.*34")
}

func TestConfigCmdErrors(t *testing.T) {
	tests := []struct {
		name    string
		o       *rootOptions
		args    []string
		wantErr string
	}{
		{
			name:    "unknown output",
			args:    []string{"config", "-o", "yaml"},
			wantErr: `unknown output format "yaml"`,
		},
		{
			name:    "missing config file",
			args:    []string{"config", "-c", filepath.Join(os.TempDir(), "does-not-exist.yaml")},
			wantErr: "creating service",
		},
		{
			name:    "remote provider cannot be created",
			args:    []string{"config", "--redis-url", "redis://localhost"},
			wantErr: "creating redis provider",
		},
		{
			name: "remote provider fails",
			o: &rootOptions{
				newRemote: func(string, string) (domainconfig.RemoteProvider, error) {
					return staticProvider{err: errors.New("connection refused")}, nil
				},
			},
			args:    []string{"config", "--redis-url", "redis://localhost"},
			wantErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.o, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
