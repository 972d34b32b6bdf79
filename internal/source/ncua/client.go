package ncua

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/fetcher"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/source"
)

// Client queries one dataset version. Each version is its own tier.
type Client struct {
	name     string
	endpoint string
	dialect  Dialect
	fetcher  fetcher.Fetcher
}

var _ source.Adapter = (*Client)(nil)

// NewClient creates a client for the dataset at endpoint (a full resource
// URL such as https://host/resource/abcd-1234.json).
func NewClient(name, endpoint string, dialect Dialect, f fetcher.Fetcher) *Client {
	return &Client{
		name:     name,
		endpoint: endpoint,
		dialect:  dialect,
		fetcher:  f,
	}
}

// Name implements source.Adapter.
func (c *Client) Name() string { return c.name }

// Search implements source.Adapter. The dataset returns a bare JSON array
// which is decoded as a stream and capped at the criteria limit.
func (c *Client) Search(ctx context.Context, crit model.Criteria) ([]model.RawRecord, error) {
	crit = crit.Normalized()

	body, err := c.fetcher.Download(ctx, c.searchURL(crit))
	if err != nil {
		return nil, eris.Wrapf(err, "ncua: %s search", c.name)
	}
	defer body.Close() //nolint:errcheck

	records, err := fetcher.DecodeArray[model.RawRecord](ctx, body, crit.Limit)
	if err != nil {
		return nil, eris.Wrapf(err, "ncua: %s decode", c.name)
	}

	zap.L().Debug("ncua: search complete",
		zap.String("tier", c.name),
		zap.String("dialect", c.dialect.Name),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (c *Client) searchURL(crit model.Criteria) string {
	params := url.Values{
		"$limit": {strconv.Itoa(crit.Limit)},
		"$order": {c.dialect.AssetsField + " DESC"},
	}
	if where := buildWhere(c.dialect, crit); where != "" {
		params.Set("$where", where)
	}
	return c.endpoint + "?" + params.Encode()
}
