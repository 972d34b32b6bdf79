// Package proxy implements the cache/proxy tier: an optional intermediary
// that serves previously fetched upstream records for a named source.
package proxy

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/fetcher"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/source"
)

// Client queries the proxy for one logical source.
type Client struct {
	name    string
	baseURL string
	system  model.SourceSystem
	fetcher fetcher.Fetcher
}

var _ source.Adapter = (*Client)(nil)

// NewClient creates a proxy tier for system.
func NewClient(name, baseURL string, system model.SourceSystem, f fetcher.Fetcher) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		system:  system,
		fetcher: f,
	}
}

// Name implements source.Adapter.
func (c *Client) Name() string { return c.name }

type response struct {
	Data   *[]model.RawRecord `json:"data"`
	Source string             `json:"source"`
}

// Search implements source.Adapter.
func (c *Client) Search(ctx context.Context, crit model.Criteria) ([]model.RawRecord, error) {
	crit = crit.Normalized()

	resp, err := fetcher.GetJSON[response](ctx, c.fetcher, c.searchURL(crit))
	if err != nil {
		return nil, eris.Wrapf(err, "proxy: %s search", c.name)
	}
	if resp.Data == nil {
		return nil, eris.Errorf("proxy: %s search: response has no data array", c.name)
	}

	records := *resp.Data
	if len(records) > crit.Limit {
		records = records[:crit.Limit]
	}
	zap.L().Debug("proxy: search complete",
		zap.String("tier", c.name),
		zap.String("upstream", resp.Source),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (c *Client) searchURL(crit model.Criteria) string {
	params := url.Values{
		"source": {string(c.system)},
		"limit":  {strconv.Itoa(crit.Limit)},
	}
	if crit.State != "" {
		params.Set("state", crit.State)
	}
	if crit.MinAssetsUSD > 0 {
		params.Set("min_assets", strconv.FormatInt(crit.MinAssetsUSD, 10))
	}
	if crit.MaxAssetsUSD > 0 {
		params.Set("max_assets", strconv.FormatInt(crit.MaxAssetsUSD, 10))
	}
	if crit.Name != "" {
		params.Set("name", crit.Name)
	}
	return c.baseURL + "?" + params.Encode()
}
