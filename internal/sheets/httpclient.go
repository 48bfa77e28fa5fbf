package sheets

import (
	"net"
	"net/http"
	"time"
)

// TimestampLayout is how Google Forms writes "Carimbo de data/hora".
const TimestampLayout = "02/01/2006 15:04:05"

// NewHTTPClient creates an HTTP client for the spreadsheet and form endpoints
// with connection pooling, timeouts and keep-alive.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
