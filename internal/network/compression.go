package network

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

var (
	gzipPool   = sync.Pool{New: func() any { return new(gzip.Reader) }}
	brotliPool = sync.Pool{New: func() any { return brotli.NewReader(nil) }}
)

// Decompressor is an http.RoundTripper that advertises br, gzip and deflate
// and hands callers a decoded body.
type Decompressor struct {
	Next http.RoundTripper
}

func NewDecompressor(next http.RoundTripper) *Decompressor {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Decompressor{Next: next}
}

func (d *Decompressor) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	}
	resp, err := d.Next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := Decode(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("decoding %s response: %w", req.URL.Host, err)
	}
	return resp, nil
}

// decodedBody closes the decoder and the wire body, then returns pooled readers.
type decodedBody struct {
	io.Reader
	closeDecoder func() error
	wire         io.ReadCloser
	release      func()
}

func (b *decodedBody) Close() error {
	var errDec error
	if b.closeDecoder != nil {
		errDec = b.closeDecoder()
	}
	errWire := b.wire.Close()
	if b.release != nil {
		b.release()
		b.release = nil
	}
	return errors.Join(errDec, errWire)
}

// Decode unwraps every Content-Encoding layer of resp in reverse order of
// application. On error the body is left partially read and must be discarded.
func Decode(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	var layers []string
	for _, v := range resp.Header.Values("Content-Encoding") {
		for _, part := range strings.Split(v, ",") {
			if enc := strings.ToLower(strings.TrimSpace(part)); enc != "" && enc != "identity" {
				layers = append(layers, enc)
			}
		}
	}
	if len(layers) == 0 {
		return nil
	}

	for i := len(layers) - 1; i >= 0; i-- {
		body := &decodedBody{wire: resp.Body}
		switch layers[i] {
		case "gzip", "x-gzip":
			zr := gzipPool.Get().(*gzip.Reader)
			if err := zr.Reset(resp.Body); err != nil {
				gzipPool.Put(zr)
				return fmt.Errorf("gzip: %w", err)
			}
			body.Reader, body.closeDecoder = zr, zr.Close
			body.release = func() { gzipPool.Put(zr) }
		case "br":
			br := brotliPool.Get().(*brotli.Reader)
			if err := br.Reset(resp.Body); err != nil {
				brotliPool.Put(br)
				return fmt.Errorf("brotli: %w", err)
			}
			body.Reader = br
			body.release = func() {
				_ = br.Reset(strings.NewReader(""))
				brotliPool.Put(br)
			}
		case "deflate":
			rc, err := inflate(resp.Body)
			if err != nil {
				return fmt.Errorf("deflate: %w", err)
			}
			body.Reader, body.closeDecoder = rc, rc.Close
		default:
			return fmt.Errorf("unsupported content encoding %q", layers[i])
		}
		resp.Body = body
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// inflate reads zlib-wrapped deflate and falls back to raw deflate, which
// some servers send under the same header.
func inflate(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(header) == 2 && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}
