package utils

import (
	"errors"
	"net/url"
	"strings"
)

// Parses a listen address of the form tcp://<host>:<port> and returns
// the host and port as a string. If the port is not specified, it
// defaults to 8080.
func ParseHttpUrl(urlstr string) (string, error) {
	uri, err := url.Parse(urlstr)
	if err != nil {
		return "", err
	}

	if uri.Port() == "" {
		uri.Host += ":8080"
	}

	var httpUri string
	switch uri.Scheme {
	case "tcp":
		httpUri = uri.Host

	default:
		return "", errors.New("Unsupported protocol: " + uri.Scheme)
	}

	return httpUri, nil
}

// Parses the address of a coordinator. Both bare authorities
// (host:port) and http/https URLs are accepted. The returned URL keeps
// any path prefix, without trailing slash, but drops query and fragment.
func ParseConnectAddr(addr string) (*url.URL, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("Empty address")
	}

	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	uri, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	switch uri.Scheme {
	case "http", "https":
	default:
		return nil, errors.New("Unsupported protocol: " + uri.Scheme)
	}

	if uri.Host == "" {
		return nil, errors.New("Missing host in address: " + addr)
	}

	return &url.URL{Scheme: uri.Scheme, Host: uri.Host, Path: strings.TrimSuffix(uri.Path, "/")}, nil
}
