package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Field
	}{
		{
			name:  "port suffix stays with the value",
			input: "a=1;b=2,3;c=4,x",
			want: []Field{
				{Class: UnknownField, Key: "a", Value: "1"},
				{Class: UnknownField, Key: "b", Value: "2,3"},
				{Class: UnknownField, Key: "c", Value: "4"},
			},
		},
		{
			name:  "value may contain equals",
			input: "Password=a=b;",
			want:  []Field{{Class: PasswordField, Key: "Password", Value: "a=b"}},
		},
		{
			name:  "keys and values are trimmed",
			input: " Server = host ;",
			want:  []Field{{Class: ServerField, Key: "Server", Value: "host"}},
		},
		{
			name:  "empty values are skipped",
			input: "Database=;Uid=sa",
			want:  []Field{{Class: UserIDField, Key: "Uid", Value: "sa"}},
		},
		{
			name:  "garbage",
			input: ";;;==,,",
			want:  nil,
		},
		{
			name:  "no pairs",
			input: "no pairs here",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConnectionString(tt.input))
		})
	}
}

func TestClassifyKey(t *testing.T) {
	tests := map[string]FieldClass{
		"Data Source":     ServerField,
		"ADDR":            ServerField,
		"network address": ServerField,
		"Initial Catalog": DatabaseField,
		"uid":             UserIDField,
		" User ID ":       UserIDField,
		"PWD":             PasswordField,
		"Encrypt":         UnknownField,
	}
	for key, want := range tests {
		assert.Equal(t, want, ClassifyKey(key), key)
	}
}

func TestObfuscateConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		partial bool
		want    string
	}{
		{
			name:    "azure server keeps port",
			input:   "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;",
			partial: true,
			want:    "Server=tcp*****net,1433;Database=[hidden];User Id=[hidden];Password=[hidden];",
		},
		{
			name:    "full hides everything",
			input:   "Server=tcp:myserver.database.windows.net,1433;Database=Prod;User Id=admin;Password=Secret1;",
			partial: false,
			want:    "Server=[hidden];Database=[hidden];User Id=[hidden];Password=[hidden];",
		},
		{
			name:    "local sql express",
			input:   `Server=.\SQLExpress;Database=MyDb;User Id=sa;Password=Secret1;`,
			partial: true,
			want:    `Server=.\SQLExpress;Database=MyDb;User Id=sa;Password=[hidden];`,
		},
		{
			name:    "local server shown even when not partial",
			input:   "Data Source=(localdb)\\MSSQLLocalDB;Initial Catalog=Dev;Pwd=x",
			partial: false,
			want:    "Server=(localdb)\\MSSQLLocalDB;Database=Dev;Password=[hidden];",
		},
		{
			name:    "synonyms and instance names",
			input:   `Data Source=db01\PRODUCTION;Initial Catalog=Customers;uid=svc_reader;pwd=x;Encrypt=True`,
			partial: true,
			want:    `Server=[hidden]\PR*****ON;Database=Cu*****rs;User Id=sv*****er;Password=[hidden];Encrypt=True;`,
		},
		{
			name:    "plain host",
			input:   "Server=myserver.example.com",
			partial: true,
			want:    "Server=mys*****com;",
		},
		{
			name:    "local flag only affects later fields",
			input:   "Database=Remote;Server=localhost;User Id=admin",
			partial: true,
			want:    "Database=R*****e;Server=localhost;User Id=admin;",
		},
		{
			name:    "garbage",
			input:   ";;,,==",
			partial: true,
			want:    "",
		},
		{
			name:    "over budget",
			input:   "Server=" + strings.Repeat("x", MaxInputLength),
			partial: true,
			want:    Hidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObfuscateConnectionString(tt.input, tt.partial))
		})
	}
}

func TestObfuscator_RevealLocalPassword(t *testing.T) {
	o := Obfuscator{RevealLocalPassword: true}

	local := o.Obfuscate(`Server=.\sqlexpress;Password=Secret1`, false)
	remote := o.Obfuscate("Server=db.example.com;Password=Secret1", true)

	assert.Equal(t, `Server=.\sqlexpress;Password=Secret1;`, local)
	require.True(t, strings.HasSuffix(remote, "Password=[hidden];"), remote)
}

func TestIsLocalServer(t *testing.T) {
	assert.True(t, IsLocalServer("(LocalDB)\\v11.0"))
	assert.True(t, IsLocalServer(`.\SQLEXPRESS01`))
	assert.True(t, IsLocalServer("tcp:LOCALHOST,1433"))
	assert.False(t, IsLocalServer("db.example.com"))
	assert.False(t, IsLocalServer(`srv\SQLExpress`))
}
