package net

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 10
	clientAgent      = "nctl/1.0"
)

var reqTransport = &http.Transport{
	MaxIdleConns:          maxIdleConns,
	IdleConnTimeout:       timeoutInSeconds * time.Second,
	DisableCompression:    true,
	DisableKeepAlives:     false,
	ResponseHeaderTimeout: time.Duration(timeoutInSeconds) * time.Second,
}

// GetHTTPClient returns a client with a cookie jar and sane timeouts.
func GetHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "error creating cookie jar")
	}
	return &http.Client{
		Timeout:   time.Duration(timeoutInSeconds) * time.Second,
		Transport: reqTransport,
		Jar:       jar,
	}, nil
}

// GetJSON retrieves the URL with the given query parameters and decodes
// the response body into target. Non-2xx responses are errors.
func GetJSON[T any](ctx context.Context, client *http.Client, base string, params url.Values, target *T) error {
	if client == nil {
		var err error
		client, err = GetHTTPClient()
		if err != nil {
			return err
		}
	}

	u, err := url.Parse(base)
	if err != nil {
		return errors.Wrapf(err, "error parsing URL: %s", base)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "error creating HTTP Get request")
	}
	req.Header.Set("User-Agent", clientAgent)

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "error executing HTTP Get request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("unexpected response status: %d - %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(err, "error decoding content")
	}
	return nil
}
