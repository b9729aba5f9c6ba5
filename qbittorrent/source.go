package qbittorrent

import (
	"mime/multipart"
	"net/textproto"
)

// TorrentSource is one torrent to submit: either a magnet/URL string or
// the raw contents of a .torrent file. Both variants travel through the
// same multipart POST and differ only in the part they write.
type TorrentSource interface {
	writePart(w *multipart.Writer) error

	// Describe returns a short label for logging.
	Describe() string
}

// MagnetSource submits a magnet link (or any URL the daemon accepts).
type MagnetSource string

func (s MagnetSource) writePart(w *multipart.Writer) error {
	part, err := w.CreateFormField("urls")
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(s))
	return err
}

// Describe implements TorrentSource.
func (s MagnetSource) Describe() string { return "magnet" }

// FileSource submits the raw contents of a .torrent file. The daemon
// only cares about the part name, so the filename is synthetic.
type FileSource []byte

func (s FileSource) writePart(w *multipart.Writer) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="torrents"; filename="torrent.torrent"`)
	header.Set("Content-Type", "application/x-bittorrent")

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(s)
	return err
}

// Describe implements TorrentSource.
func (s FileSource) Describe() string { return "file" }
