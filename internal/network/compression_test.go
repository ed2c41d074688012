package network

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `<feed><entry><title>조코딩 신규 영상</title></entry></feed>`

func encode(t *testing.T, enc string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch enc {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "deflate":
		w = zlib.NewWriter(&buf)
	case "raw-deflate":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w = fw
	default:
		t.Fatalf("unknown encoding %s", enc)
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompressorDecodesEncodings(t *testing.T) {
	for _, enc := range []string{"gzip", "br", "deflate", "raw-deflate"} {
		t.Run(enc, func(t *testing.T) {
			body := encode(t, enc, []byte(payload))
			header := enc
			if enc == "raw-deflate" {
				header = "deflate"
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
				w.Header().Set("Content-Encoding", header)
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			client := &http.Client{Transport: NewDecompressor(&http.Transport{DisableCompression: true})}
			resp, err := client.Get(srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			got, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
			assert.True(t, resp.Uncompressed)
		})
	}
}

func TestDecodeLayered(t *testing.T) {
	inner := encode(t, "gzip", []byte(payload))
	outer := encode(t, "br", inner)
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip, br"}},
		Body:   io.NopCloser(bytes.NewReader(outer)),
	}
	require.NoError(t, Decode(resp))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
	assert.NoError(t, resp.Body.Close())
}

func TestDecodeRejectsUnknownEncoding(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"zstd"}},
		Body:   io.NopCloser(bytes.NewReader([]byte("x"))),
	}
	assert.Error(t, Decode(resp))
}

func TestDecodeIdentityUntouched(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"identity"}},
		Body:   io.NopCloser(bytes.NewReader([]byte(payload))),
	}
	require.NoError(t, Decode(resp))
	assert.False(t, resp.Uncompressed)
}
