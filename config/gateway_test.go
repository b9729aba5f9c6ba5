package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRouteTable(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "route")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultGateway(t *testing.T) {
	t.Run("docker bridge", func(t *testing.T) {
		route := "Iface\tDestination\tGateway \tFlags\tRefCnt\tUse\tMetric\tMask\t\tMTU\tWindow\tIRTT\n" +
			"eth0\t00000000\t010011AC\t0003\t0\t0\t0\t00000000\t0\t0\t0\n" +
			"eth0\t000011AC\t00000000\t0001\t0\t0\t0\t0000FFFF\t0\t0\t0\n"

		gateway, err := defaultGateway(writeRouteTable(t, route))
		require.NoError(t, err)
		assert.Equal(t, "172.17.0.1", gateway)
	})

	t.Run("no default route", func(t *testing.T) {
		route := "Iface\tDestination\tGateway \tFlags\tRefCnt\tUse\tMetric\tMask\t\tMTU\tWindow\tIRTT\n" +
			"eth0\t000011AC\t00000000\t0001\t0\t0\t0\t0000FFFF\t0\t0\t0\n"

		_, err := defaultGateway(writeRouteTable(t, route))
		assert.ErrorIs(t, err, ErrNoGateway)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := defaultGateway(writeRouteTable(t, ""))
		assert.ErrorIs(t, err, ErrNoGateway)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := defaultGateway(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestParseHexIP(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "010011AC", want: "172.17.0.1"},
		{in: "0100A8C0", want: "192.168.0.1"},
		{in: "00000000", want: "0.0.0.0"},
		{in: "xyz", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexIP(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
