package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/srand/jolt/testrunner/pkg/protocol"
	"github.com/srand/jolt/testrunner/pkg/utils"
)

// Reporter receives the results of every unit run by a Driver.
type Reporter interface {
	Report(ctx context.Context, identity Identity, results []protocol.TestResult) error
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, Identity, []protocol.TestResult) error {
	return nil
}

// NopReporter discards results.
func NopReporter() Reporter {
	return nopReporter{}
}

// HTTPReporter posts results to the coordinator's results endpoint.
type HTTPReporter struct {
	client *http.Client
}

func NewHTTPReporter(timeout time.Duration) *HTTPReporter {
	return &HTTPReporter{
		client: &http.Client{Timeout: timeout},
	}
}

func ResultsURL(identity Identity) (string, error) {
	base, err := utils.ParseConnectAddr(identity.ConnectAddr)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set(protocol.RunnerParam, identity.RunnerId)

	base.Path += protocol.ResultsPath
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (r *HTTPReporter) Report(ctx context.Context, identity Identity, results []protocol.TestResult) error {
	uri, err := ResultsURL(identity)
	if err != nil {
		return err
	}

	body, err := json.Marshal(results)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{URL: uri, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{StatusCode: resp.StatusCode, Err: fmt.Errorf("posting results")}
	}

	return nil
}
