// Package qbittorrent provides a client for the qBittorrent Web API.
//
// The client implements the small slice of the v2 API the relay needs:
// cookie-based session login, submitting a torrent source, and reading
// the application version.
//
// # Usage
//
//	client, err := qbittorrent.NewClient("http://localhost:8080", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Login(ctx, "admin", "adminadmin"); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.AddTorrent(ctx, qbittorrent.MagnetSource("magnet:?xt=..."))
//
// A torrent source is either a MagnetSource (sent as the "urls" form
// field) or a FileSource (sent as the "torrents" file part). The daemon
// signals acceptance with the literal response body "Ok."; the client
// treats any other body as a rejection regardless of status code and
// returns a SubmissionError carrying the daemon's actual response.
package qbittorrent
