package overrides

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// HTTPStore talks to the remote override API:
// GET {base}/overrides and PUT {base}/overrides/{id}.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

var _ Store = (*HTTPStore)(nil)

// DefaultHTTPTimeout is the request timeout of the default client.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		s.client = c
	}
}

// NewHTTPStore creates a client for the API rooted at baseURL.
func NewHTTPStore(baseURL string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store. The API has no single-item read, so this filters GetAll.
func (s *HTTPStore) Get(ctx context.Context, id string) (model.Override, bool, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return model.Override{}, false, err
	}
	o, ok := all[id]
	return o, ok, nil
}

// GetAll implements Store.
func (s *HTTPStore) GetAll(ctx context.Context) (map[string]model.Override, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/overrides", nil)
	if err != nil {
		return nil, eris.Wrap(err, "remote: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "remote: get overrides")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("remote: get overrides: status %d", resp.StatusCode)
	}

	all := make(map[string]model.Override)
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, eris.Wrap(err, "remote: decode overrides")
	}
	return all, nil
}

// Put implements Store. Any 2xx status is success; the body is ignored.
func (s *HTTPStore) Put(ctx context.Context, id string, patch model.Override) error {
	if err := checkWrite(id, patch); err != nil {
		return err
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return eris.Wrap(err, "remote: marshal override")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		s.baseURL+"/overrides/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "remote: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "remote: put override %s", id)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("remote: put override %s: status %d", id, resp.StatusCode)
	}
	return nil
}
