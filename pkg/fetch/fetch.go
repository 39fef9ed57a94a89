// Package fetch issues the metadata requests that sit around a download job:
// decoding JSON documents and streaming raw bodies.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spuzmc/spuz-get/pkg/download"
)

type Client interface {
	// GetJSON sends a GET request to url and decodes the JSON body into v.
	GetJSON(ctx context.Context, url string, v any) error
	// GetStream sends a GET request to url and returns the body. The caller
	// must close it.
	GetStream(ctx context.Context, url string) (io.ReadCloser, error)
}

type HTTPFetcher struct {
	client download.HTTPClient
}

var _ Client = &HTTPFetcher{}

func New(client download.HTTPClient) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) GetJSON(ctx context.Context, url string, v any) error {
	body, err := f.GetStream(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("error decoding %s: %w", url, err)
	}
	return nil
}

func (f *HTTPFetcher) GetStream(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request for %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", download.ErrUnexpectedHTTPStatus(resp.StatusCode), url)
	}
	return resp.Body, nil
}

// JSONResource is a body that has been requested but not decoded yet, so it
// can both be saved verbatim and parsed.
type JSONResource[T any] struct {
	Body io.ReadCloser
}

func GetResource[T any](ctx context.Context, c Client, url string) (*JSONResource[T], error) {
	body, err := c.GetStream(ctx, url)
	if err != nil {
		return nil, err
	}
	return &JSONResource[T]{Body: body}, nil
}

// Decode parses the remaining body and closes it.
func (r *JSONResource[T]) Decode() (T, error) {
	var v T
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("error decoding resource: %w", err)
	}
	return v, nil
}

// SaveAndDecode writes the raw body to w while decoding it.
func (r *JSONResource[T]) SaveAndDecode(w io.Writer) (T, error) {
	var v T
	defer r.Body.Close()
	tee := io.TeeReader(r.Body, w)
	if err := json.NewDecoder(tee).Decode(&v); err != nil {
		return v, fmt.Errorf("error decoding resource: %w", err)
	}
	// The decoder may stop short of trailing whitespace.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return v, fmt.Errorf("error saving resource: %w", err)
	}
	return v, nil
}
