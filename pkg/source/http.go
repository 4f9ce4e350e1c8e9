package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPResolver opens http and https URIs with GET requests.
type HTTPResolver struct {
	// Client, when nil, falls back to http.DefaultClient.
	Client *http.Client
}

func (r HTTPResolver) Resolve(uri string) (Source, error) {
	switch uriScheme(uri) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q is not an http or https URI", ErrUnknownScheme, uri)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSource{uri: uri, client: client}, nil
}

type httpSource struct {
	uri    string
	client *http.Client
}

func (s *httpSource) URI() string { return s.uri }

func (s *httpSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("source: %s returned %s", s.uri, resp.Status)
	}
	return resp.Body, nil
}
