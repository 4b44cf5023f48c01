package revshare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	tests := []struct {
		input   string
		host    string
		path    string
		url     string
		display string
	}{
		{"$example.pointer.com", "example.pointer.com", "", "https://example.pointer.com/.well-known/pay", "$example.pointer.com"},
		{"$wallet.example/alice", "wallet.example", "/alice", "https://wallet.example/alice", "$wallet.example/alice"},
		{"$Wallet.Example/", "wallet.example", "", "https://wallet.example/.well-known/pay", "$wallet.example"},
		{"$wallet.example./a/b", "wallet.example", "/a/b", "https://wallet.example/a/b", "$wallet.example/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePointer(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.host, p.Host)
			assert.Equal(t, tt.path, p.Path)
			assert.Equal(t, tt.url, p.URL())
			assert.Equal(t, tt.display, p.String())
			assert.Equal(t, tt.input, p.Raw)
		})
	}
}

func TestParsePointer_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no dollar", "example.pointer.com"},
		{"dollar only", "$"},
		{"no host", "$/alice"},
		{"port", "$wallet.example:8443/alice"},
		{"userinfo", "$bob@wallet.example"},
		{"empty label", "$wallet..example"},
		{"long label", "$" + strings.Repeat("a", 64) + ".example"},
		{"query", "$wallet.example/alice?x=1"},
		{"fragment", "$wallet.example/alice#x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePointer(tt.input)
			assert.ErrorIs(t, err, ErrInvalidPointer)
		})
	}
}
