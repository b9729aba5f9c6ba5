package qbittorrent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{
			name:    "valid URL",
			baseURL: "http://localhost:8080",
			wantErr: false,
		},
		{
			name:    "valid URL with trailing slash",
			baseURL: "http://localhost:8080/",
			wantErr: false,
		},
		{
			name:    "empty URL",
			baseURL: "",
			wantErr: true,
		},
		{
			name:    "not a URL",
			baseURL: "not a url",
			wantErr: true,
		},
		{
			name:    "missing scheme",
			baseURL: "localhost:8080",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidEndpoint)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080", client.baseURL.String())
			assert.NotNil(t, client.httpClient.Jar, "session cookies must persist on the transport")
		})
	}
}

func TestLogin(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("success", func(t *testing.T) {
		var gotReferer, gotContentType, gotBody string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v2/auth/login", r.URL.Path)

			gotReferer = r.Header.Get("Referer")
			gotContentType = r.Header.Get("Content-Type")
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			gotBody = string(body)

			http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session-token"})
			w.Write([]byte("Ok."))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, logger)
		require.NoError(t, err)

		err = client.Login(context.Background(), "admin", "adminadmin")
		require.NoError(t, err)

		assert.Equal(t, server.URL, gotReferer)
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
		assert.Equal(t, "username=admin&password=adminadmin", gotBody)
	})

	t.Run("credentials are form-escaped", func(t *testing.T) {
		var gotBody string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			gotBody = string(body)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, logger)
		require.NoError(t, err)

		err = client.Login(context.Background(), "admin", "p&ss wörd")
		require.NoError(t, err)

		assert.Equal(t, "username=admin&password=p%26ss+w%C3%B6rd", gotBody)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, logger)
		require.NoError(t, err)

		err = client.Login(context.Background(), "admin", "wrong")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("unreachable daemon", func(t *testing.T) {
		client, err := NewClient("http://127.0.0.1:1", logger)
		require.NoError(t, err)

		err = client.Login(context.Background(), "admin", "adminadmin")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})
}

// fakeDaemon is an httptest handler mimicking the login/add endpoints,
// recording what the client sent.
type fakeDaemon struct {
	t *testing.T

	addStatus int
	addBody   string

	sawLogin   bool
	sawCookie  bool
	gotURLs    []string
	gotFile    []byte
	gotName    string
	gotMIME    string
	partFields []string
}

func (d *fakeDaemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v2/auth/login":
		d.sawLogin = true
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session-token"})
		w.Write([]byte("Ok."))

	case "/api/v2/torrents/add":
		if _, err := r.Cookie("SID"); err == nil {
			d.sawCookie = true
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			d.t.Errorf("failed to parse multipart form: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for name, values := range r.MultipartForm.Value {
			d.partFields = append(d.partFields, name)
			if name == "urls" {
				d.gotURLs = values
			}
		}
		if file, header, err := r.FormFile("torrents"); err == nil {
			d.partFields = append(d.partFields, "torrents")
			d.gotName = header.Filename
			d.gotMIME = header.Header.Get("Content-Type")
			data, err := io.ReadAll(file)
			assert.NoError(d.t, err)
			d.gotFile = data
		}

		status := d.addStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		w.Write([]byte(d.addBody))

	default:
		http.NotFound(w, r)
	}
}

func TestAddTorrentMagnet(t *testing.T) {
	daemon := &fakeDaemon{t: t, addBody: "Ok."}
	server := httptest.NewServer(daemon)
	defer server.Close()

	client, err := NewClient(server.URL, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, "admin", "adminadmin"))

	magnet := "magnet:?xt=urn:btih:ABC&dn=Test"
	err = client.AddTorrent(ctx, MagnetSource(magnet))
	require.NoError(t, err)

	assert.Equal(t, []string{magnet}, daemon.gotURLs)
	assert.Equal(t, []string{"urls"}, daemon.partFields, "exactly one part, named urls")
	assert.True(t, daemon.sawCookie, "session cookie from login must ride on the add request")
}

func TestAddTorrentFile(t *testing.T) {
	daemon := &fakeDaemon{t: t, addBody: "Ok."}
	server := httptest.NewServer(daemon)
	defer server.Close()

	client, err := NewClient(server.URL, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, "admin", "adminadmin"))

	contents := []byte{0x64, 0x38, 0x3a, 0x61, 0x6e, 0x6e, 0x6f, 0x75, 0x6e, 0x63, 0x65}
	err = client.AddTorrent(ctx, FileSource(contents))
	require.NoError(t, err)

	assert.Equal(t, contents, daemon.gotFile)
	assert.Equal(t, "torrent.torrent", daemon.gotName)
	assert.Equal(t, "application/x-bittorrent", daemon.gotMIME)
	assert.Equal(t, []string{"torrents"}, daemon.partFields, "exactly one part, named torrents")
	assert.True(t, daemon.sawCookie)
}

func TestAddTorrentRejected(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:       "success status with non-sentinel body",
			status:     http.StatusOK,
			body:       "Fails.",
			wantStatus: http.StatusOK,
		},
		{
			name:       "error status",
			status:     http.StatusForbidden,
			body:       "Forbidden",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "success status with empty body",
			status:     http.StatusOK,
			body:       "",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			daemon := &fakeDaemon{t: t, addStatus: tt.status, addBody: tt.body}
			server := httptest.NewServer(daemon)
			defer server.Close()

			client, err := NewClient(server.URL, zerolog.Nop())
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, client.Login(ctx, "admin", "adminadmin"))

			err = client.AddTorrent(ctx, MagnetSource("magnet:?xt=urn:btih:ABC"))
			require.Error(t, err)

			var subErr *SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.wantStatus, subErr.StatusCode)
			assert.Equal(t, tt.body, subErr.Body)
		})
	}
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/app/version", r.URL.Path)
		w.Write([]byte("v4.6.1"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, zerolog.Nop())
	require.NoError(t, err)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v4.6.1", version)
}
