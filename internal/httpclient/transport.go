package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"

	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

// transportTuning groups the connection-pool knobs set once at construction,
// following the teacher's transportDefaults shape.
type transportTuning struct {
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
}

var defaultTuning = transportTuning{
	maxIdleConns:        100,
	maxIdleConnsPerHost: 20,
	maxConnsPerHost:     40,
	idleConnTimeout:     90 * time.Second,
	tlsHandshakeTimeout: 10 * time.Second,
}

// buildTransport constructs an *http.Transport for one proxy mode, wiring in
// the connect timeout via a net.Dialer and the mode's proxy agent (or no
// proxy, for a direct connection).
func buildTransport(connectTimeout time.Duration, proxyFn func(*http.Request) (*url.URL, error)) *http.Transport {
	dialer := &net.Dialer{Timeout: connectTimeout}
	t := &http.Transport{
		DisableKeepAlives:     false,
		MaxIdleConns:          defaultTuning.maxIdleConns,
		MaxIdleConnsPerHost:   defaultTuning.maxIdleConnsPerHost,
		MaxConnsPerHost:       defaultTuning.maxConnsPerHost,
		IdleConnTimeout:       defaultTuning.idleConnTimeout,
		TLSHandshakeTimeout:   defaultTuning.tlsHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext:           dialer.DialContext,
		Proxy:                 proxyFn,
		// DisableCompression stays false (default). A request with
		// AcceptGzip set carries its own Accept-Encoding ("gzip, br"), so
		// the transport leaves the body compressed and this package decodes
		// both gzip and brotli; other requests get Go's transparent gzip.
	}
	return t
}

// browserParityTransport wraps an http2.Transport dialed through uTLS with a
// Chrome ClientHello, so a board sitting behind fingerprint-sensitive edge
// protection sees a coherent, stable client identity across requests rather
// than Go's default (and fingerprintable) crypto/tls handshake. This is an
// opt-in mode (Client.SetBrowserParity); ordinary board fetches never need
// it.
func browserParityTransport(connectTimeout time.Duration) http.RoundTripper {
	helloID := utls.HelloChrome_120

	dialFn := func(ctx context.Context, network, addr string, tlsCfg *tls.Config) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("httpclient: parse addr %q: %w", addr, err)
		}
		sni := host
		if tlsCfg != nil && tlsCfg.ServerName != "" {
			sni = tlsCfg.ServerName
		}

		d := net.Dialer{Timeout: connectTimeout}
		rawConn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, fmt.Errorf("httpclient: dial %s: %w", addr, err)
		}

		uConn := utls.UClient(rawConn, &utls.Config{ServerName: sni}, helloID)
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = uConn.Close()
			return nil, fmt.Errorf("httpclient: TLS handshake with %s: %w", addr, err)
		}
		return uConn, nil
	}

	return &http2.Transport{
		DialTLSContext:      dialFn,
		IdleConnTimeout:     defaultTuning.idleConnTimeout,
		DisableCompression:  false,
	}
}

// transportSet holds the per-mode transports built from the current proxy
// configuration, rebuilt whenever that configuration changes.
type transportSet struct {
	read  *http.Transport
	write *http.Transport
}

func buildTransportSet(pm *proxymanager.Manager, connectTimeout time.Duration) (*transportSet, error) {
	readProxy, err := pm.Agent(proxymanager.Read)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build read proxy agent: %w", err)
	}
	writeProxy, err := pm.Agent(proxymanager.Write)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build write proxy agent: %w", err)
	}
	return &transportSet{
		read:  buildTransport(connectTimeout, readProxy),
		write: buildTransport(connectTimeout, writeProxy),
	}, nil
}
