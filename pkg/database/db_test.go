package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteValue(t *testing.T) {
	assert.Equal(t, "'UTC'", quoteValue("UTC"))
	assert.Equal(t, `'it\'s'`, quoteValue("it's"))
	assert.Equal(t, `'a\\b'`, quoteValue(`a\b`))
	assert.Equal(t, "''", quoteValue(""))
}

func TestRuntimeDSN(t *testing.T) {
	cases := []struct {
		name     string
		cfg      Config
		contains []string
		exact    string
	}{
		{
			name:  "no runtime params",
			cfg:   Config{DSN: "host=localhost dbname=opofit"},
			exact: "host=localhost dbname=opofit",
		},
		{
			name:  "key value dsn",
			cfg:   Config{DSN: "host=localhost dbname=opofit", TimeZone: "Europe/Madrid", ClientEncoding: "UTF8"},
			exact: "host=localhost dbname=opofit timezone='Europe/Madrid' client_encoding='UTF8'",
		},
		{
			name: "url dsn",
			cfg:  Config{DSN: "postgres://u:p@localhost:5432/opofit?sslmode=disable", TimeZone: "UTC"},
			contains: []string{
				"dbname=opofit", "host=localhost", "port=5432", "sslmode=disable", "user=u", "timezone='UTC'",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runtimeDSN(tc.cfg)
			require.NoError(t, err)
			if tc.exact != "" {
				assert.Equal(t, tc.exact, got)
			}
			for _, part := range tc.contains {
				assert.Contains(t, got, part)
			}
		})
	}
}

func TestRuntimeDSN_BadURL(t *testing.T) {
	_, err := runtimeDSN(Config{DSN: "postgres://%zz"})
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
