package scheduler

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/loadcoord/loadcoord/internal/wire"
)

// HTTP client tuning constants, carried over from the teacher's stress
// test executor.
const (
	tcpDialTimeout        = 5 * time.Second
	tcpKeepAliveInterval  = 30 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	idleConnTimeout       = 90 * time.Second
	expectContinueTimeout = 1 * time.Second
	responseHeaderTimeout = 30 * time.Second
)

// buildHTTPClient returns a client tuned for sustained concurrent load:
// a bounded connection pool sized to concurrency and an optional TLS
// configuration taken from the request template.
func buildHTTPClient(concurrency int, tlsCfg *wire.TLSConfig) (*http.Client, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	transport := &http.Transport{
		MaxIdleConns:        concurrency,
		MaxIdleConnsPerHost: concurrency,
		MaxConnsPerHost:     concurrency * 2,
		IdleConnTimeout:     idleConnTimeout,
		DisableKeepAlives:   false,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,

		DialContext: (&net.Dialer{
			Timeout:   tcpDialTimeout,
			KeepAlive: tcpKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
	}

	if tlsCfg != nil {
		conf := &tls.Config{InsecureSkipVerify: tlsCfg.InsecureSkipVerify}

		if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsCfg.CertFile, tlsCfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			conf.Certificates = []tls.Certificate{cert}
		}

		if tlsCfg.CAFile != "" {
			caCert, err := os.ReadFile(tlsCfg.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			conf.RootCAs = pool
		}

		transport.TLSClientConfig = conf
	}

	return &http.Client{
		Timeout:   responseHeaderTimeout,
		Transport: transport,
	}, nil
}
