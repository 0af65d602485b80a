package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/srand/jolt/testrunner/pkg/log"
	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

const DefaultRequestTimeout = 30 * time.Second

// Transport performs a single request for work.
type Transport interface {
	Request(ctx context.Context, identity Identity) (*protocol.WorkAssignment, error)
}

// HTTPTransport requests work with GET /tests.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Compression is negotiated explicitly so that gzip bodies are
	// decoded by klauspost/compress.
	transport.DisableCompression = true

	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// TestsURL returns the URL used to request work for identity.
func TestsURL(identity Identity) (string, error) {
	base, err := utils.ParseConnectAddr(identity.ConnectAddr)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set(protocol.RunnerParam, identity.RunnerId)
	if identity.Revision != "" {
		query.Set(protocol.RevisionParam, identity.Revision)
	}

	base.Path += protocol.TestsPath
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (t *HTTPTransport) Request(ctx context.Context, identity Identity) (*protocol.WorkAssignment, error) {
	uri, err := TestsURL(identity)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	log.Tracef("GET %s", uri)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: uri, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &ProtocolError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: uri, Err: err}
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		body, err = gunzip(body)
		if err != nil {
			return nil, &ProtocolError{StatusCode: resp.StatusCode, Err: err}
		}
	}

	assignment := &protocol.WorkAssignment{}
	if err := json.Unmarshal(body, assignment); err != nil {
		return nil, &ProtocolError{StatusCode: resp.StatusCode, Err: err}
	}

	return assignment, nil
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
