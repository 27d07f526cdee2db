package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{
			name:      "simple pair",
			line:      "server_port = 9011",
			wantKey:   "server_port",
			wantValue: "9011",
			wantOK:    true,
		},
		{
			name:      "no spaces around separator",
			line:      "debug=true",
			wantKey:   "debug",
			wantValue: "true",
			wantOK:    true,
		},
		{
			name:      "value containing separator",
			line:      "orders.rowkey.delimiter = =",
			wantKey:   "orders.rowkey.delimiter",
			wantValue: "=",
			wantOK:    true,
		},
		{
			name:   "comment",
			line:   "# server_port = 9011",
			wantOK: false,
		},
		{
			name:   "blank line",
			line:   "   ",
			wantOK: false,
		},
		{
			name:   "no separator",
			line:   "server_port 9011",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := parseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestLoadPropertiesFile(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), propertiesFileName)
	content := `# destination routing for the orders topic
orders.rowkey.columns = id,region
orders.rowkey.delimiter = -

orders.column.family = cf1,cf2
orders.column.family.cf1.columns = id
orders.column.family.cf2.columns = region,total
`
	req.NoError(os.WriteFile(path, []byte(content), 0o644))

	props, err := LoadPropertiesFile(path)
	req.NoError(err)

	got, ok := props.Get("orders.rowkey.columns")
	req.True(ok)
	req.Equal("id,region", got)

	got, ok = props.Get("orders.column.family.cf2.columns")
	req.True(ok)
	req.Equal("region,total", got)

	// Comments and blank lines are not entries.
	_, ok = props.Get("# destination routing for the orders topic")
	req.False(ok)

	// Unknown destinations simply miss.
	_, ok = props.Get("users.rowkey.columns")
	req.False(ok)
}

func TestLoadPropertiesFile_missing(t *testing.T) {
	props, err := LoadPropertiesFile(filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
	require.Nil(t, props)
	assert.Contains(t, err.Error(), "failed to open properties file")
}
