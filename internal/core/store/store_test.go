package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/config"
)

func TestStoreDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		want    string
		wantErr bool
	}{
		{
			name: "remote url gains the auth token",
			cfg: config.StoreConfig{
				URL:       "libsql://example.turso.io",
				AuthToken: "token123",
			},
			want: "libsql://example.turso.io?authToken=token123",
		},
		{
			name: "existing query parameters are preserved",
			cfg: config.StoreConfig{
				URL:       "libsql://example.turso.io?foo=bar",
				AuthToken: "token123",
			},
			want: "libsql://example.turso.io?authToken=token123&foo=bar",
		},
		{
			name: "file dsn passes through unchanged",
			cfg:  config.StoreConfig{Path: "file:./worklane.db"},
			want: "file:./worklane.db",
		},
		{
			name: "memory path passes through unchanged",
			cfg:  config.StoreConfig{Path: ":memory:"},
			want: ":memory:",
		},
		{
			name:    "empty config is rejected",
			cfg:     config.StoreConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := storeDSN(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, dsn)
		})
	}
}

func TestStoreDSNPrependsFileScheme(t *testing.T) {
	dir := t.TempDir()
	dsn, err := storeDSN(config.StoreConfig{Path: dir + "/worklane.db"})
	require.NoError(t, err)
	require.Equal(t, "file:"+dir+"/worklane.db", dsn)
}

func TestIsEmbeddedDSN(t *testing.T) {
	require.True(t, isEmbeddedDSN(":memory:"))
	require.True(t, isEmbeddedDSN("file:./worklane.db"))
	require.False(t, isEmbeddedDSN("libsql://example.turso.io"))
}
