package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-titlepage/pkg/domain/config"
)

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr string
	}{
		{name: "no rules", rules: nil},
		{name: "valid", rules: []Rule{{Prefix: "Secrets", Action: Hide}}},
		{name: "empty prefix", rules: []Rule{{Prefix: " ", Action: Hide}}, wantErr: "empty prefix"},
		{name: "unknown action", rules: []Rule{{Prefix: "x", Action: "shred"}}, wantErr: `unknown action "shred"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.rules)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Rules(), len(tt.rules))
		})
	}
}

func TestNewPolicy_DefaultsToPartial(t *testing.T) {
	p, err := NewPolicy([]Rule{{Prefix: "Api/Key"}})
	require.NoError(t, err)

	assert.Equal(t, Partial, p.ActionFor("api/key (ENV)"))
}

func TestPolicy_ActionFor(t *testing.T) {
	p := DefaultPolicy()

	tests := map[string]Action{
		"LogicConfiguration/SomeIp (config.yaml)":    Partial,
		"logicconfiguration/someemail (ENV)":         Partial,
		"LogicConfiguration/SomeArray[1].Id (CMD)":   Partial,
		"LogicConfiguration/SomeArray[0].Id (CMD)":   Passthrough,
		"DatabaseConnection (KeyFile)":               ConnectionString,
		"AllowedHosts (SYS/MEM)":                     Passthrough,
		"LogicConfiguration/SomeName (Azure AppCfg)": Passthrough,
	}
	for key, want := range tests {
		assert.Equal(t, want, p.ActionFor(key), key)
	}
}

func TestPolicy_FirstRuleWins(t *testing.T) {
	p, err := NewPolicy([]Rule{
		{Prefix: "Db/Primary", Action: ConnectionStringFull},
		{Prefix: "Db", Action: Hide},
	})
	require.NoError(t, err)

	got, action := p.Redact("Db/Primary (ENV)", "Server=db.example.com;Database=Orders")
	assert.Equal(t, ConnectionStringFull, action)
	assert.Equal(t, "Server=[hidden];Database=[hidden];", got)

	got, action = p.Redact("Db/Replica (ENV)", "anything")
	assert.Equal(t, Hide, action)
	assert.Equal(t, Hidden, got)
}

func TestPolicy_WithObfuscator(t *testing.T) {
	p, err := NewPolicy(
		[]Rule{{Prefix: "Db", Action: ConnectionString}},
		WithObfuscator(Obfuscator{RevealLocalPassword: true}),
	)
	require.NoError(t, err)

	assert.Equal(t, "Server=localhost;Password=pw;", p.MaskValue("Db (ENV)", "Server=localhost;Password=pw"))
}

func TestPolicy_Apply(t *testing.T) {
	entries := []config.FlatEntry{
		{Key: "AllowedHosts (ENV)", Value: "*"},
		{Key: "LogicConfiguration/SomeIp (config.yaml)", Value: "192.168.10.234"},
		{Key: "LogicConfiguration/SomeEmail (config.yaml)", Value: "john.doe@gmail.com"},
		{Key: "DatabaseConnection (ENV)", Value: "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;"},
	}

	got := DefaultPolicy().Apply(entries)

	assert.Equal(t, []config.FlatEntry{
		{Key: "AllowedHosts (ENV)", Value: "*"},
		{Key: "LogicConfiguration/SomeIp (config.yaml)", Value: "19*.*.*.*34"},
		{Key: "LogicConfiguration/SomeEmail (config.yaml)", Value: "j*****oe@***.com"},
		{Key: "DatabaseConnection (ENV)", Value: "Server=tcp*****net,1433;Database=[hidden];User Id=[hidden];Password=[hidden];"},
	}, got)
	assert.Equal(t, "192.168.10.234", entries[1].Value)
}
