package config

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

const routeTablePath = "/proc/net/route"

// ErrNoGateway is returned when no default route exists, so the daemon
// URL can be neither read from config nor discovered.
var ErrNoGateway = errors.New("no default gateway found")

// ResolveURL returns the configured daemon URL. When the URL is unset
// it falls back to the default gateway on qBittorrent's standard port,
// for setups where the bot runs in a container next to a daemon on the
// docker host.
func (c QBittorrentConfig) ResolveURL() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}

	gateway, err := defaultGateway(routeTablePath)
	if err != nil {
		return "", fmt.Errorf("qbittorrent.url is not set and gateway discovery failed: %w", err)
	}

	return fmt.Sprintf("http://%s:8080", gateway), nil
}

// defaultGateway reads the kernel route table and returns the gateway
// of the default route (destination 00000000).
func defaultGateway(routeFile string) (string, error) {
	f, err := os.Open(routeFile)
	if err != nil {
		return "", fmt.Errorf("failed to read route table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Scan() // skip header line

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}

		gateway, err := parseHexIP(fields[2])
		if err != nil {
			continue
		}
		return gateway, nil
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to scan route table: %w", err)
	}

	return "", ErrNoGateway
}

// parseHexIP decodes the little-endian hex IPv4 format used in
// /proc/net/route (e.g. 010011AC is 172.17.0.1).
func parseHexIP(s string) (string, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid route table address %q: %w", s, err)
	}

	ip := net.IPv4(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	return ip.String(), nil
}
