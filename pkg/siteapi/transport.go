package siteapi

import (
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v3"
)

// TransportOptions collects various options which can be set for the
// retrying HTTP transport.
type TransportOptions struct {
	Connect          time.Duration
	ConnKeepAlive    time.Duration
	ExpectContinue   time.Duration
	IdleConn         time.Duration
	MaxAllIdleConns  int
	MaxHostIdleConns int
	ResponseHeader   time.Duration
	TLSHandshake     time.Duration
	MaxElapsedTime   time.Duration
}

// Transport returns a new http.RoundTripper with the given settings applied,
// wrapped with retry on transient failures. Retry policy lives entirely in
// this transport; callers above it never retry on their own.
func Transport(opts TransportOptions) http.RoundTripper {
	tr := &http.Transport{
		ResponseHeaderTimeout: opts.ResponseHeader,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: opts.ConnKeepAlive,
			Timeout:   opts.Connect,
		}).DialContext,
		MaxIdleConns:          opts.MaxAllIdleConns,
		IdleConnTimeout:       opts.IdleConn,
		TLSHandshakeTimeout:   opts.TLSHandshake,
		MaxIdleConnsPerHost:   opts.MaxHostIdleConns,
		ExpectContinueTimeout: opts.ExpectContinue,
	}

	return &retryRoundTripper{upstream: tr, maxElapsedTime: opts.MaxElapsedTime}
}

type retryRoundTripper struct {
	upstream       http.RoundTripper
	maxElapsedTime time.Duration
}

// RoundTrip implements http.RoundTripper. Connection errors and 5xx
// responses are retried with exponential backoff until maxElapsedTime runs
// out; requests with a body are only retried when the body can be replayed.
func (rt *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return rt.upstream.RoundTrip(req)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = rt.maxElapsedTime

	var resp *http.Response
	var err error
	for {
		if req.Body != nil {
			if req.Body, err = req.GetBody(); err != nil {
				return nil, err
			}
		}
		resp, err = rt.upstream.RoundTrip(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		d := bo.NextBackOff()
		if d == backoff.Stop {
			return resp, err
		}
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(d):
		}
	}
}
