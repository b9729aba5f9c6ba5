package relay

import "net/url"

// MagnetDisplayName extracts the dn (display name) parameter from a
// magnet URI so the acknowledgment can name the torrent. Returns ""
// when the parameter is absent or the URI does not parse.
func MagnetDisplayName(magnet string) string {
	u, err := url.Parse(magnet)
	if err != nil {
		return ""
	}
	return u.Query().Get("dn")
}
