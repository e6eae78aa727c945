package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HttpRequest is a struct to hold request parameters
type HttpRequest struct {
	URL     string
	Method  string
	Body    []byte
	Headers map[string]string
}

type Client struct {
	client *http.Client
}

// NewClient returns a client with a 10 second timeout whose transport emits
// OpenTelemetry spans for every outbound call.
func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SendRequest sends an HTTP request based on the given HttpRequest struct
func (c *Client) SendRequest(ctx context.Context, req HttpRequest) (int, []byte, error) {
	request, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewBuffer(req.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		request.Header.Set(key, value)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return response.StatusCode, body, nil
}
