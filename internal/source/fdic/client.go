package fdic

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

// DefaultBaseURL is the public BankFind API root.
const DefaultBaseURL = "https://api.fdic.gov/banks"

// Client queries one BankFind-compatible endpoint.
type Client struct {
	name    string
	baseURL string
	fetcher fetcher.Fetcher
}

var _ source.Adapter = (*Client)(nil)

// NewClient creates a client for the endpoint rooted at baseURL. name is the
// tier name used in logs and metrics.
func NewClient(name, baseURL string, f fetcher.Fetcher) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: f,
	}
}

// Name implements source.Adapter.
func (c *Client) Name() string { return c.name }

// response is the BankFind envelope. Each element is either the record
// itself or a wrapper whose "data" key holds the record.
type response struct {
	Data *[]map[string]any `json:"data"`
}

// Search implements source.Adapter.
func (c *Client) Search(ctx context.Context, crit model.Criteria) ([]model.RawRecord, error) {
	crit = crit.Normalized()
	reqURL := c.searchURL(crit)

	resp, err := fetcher.GetJSON[response](ctx, c.fetcher, reqURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fdic: %s search", c.name)
	}
	if resp.Data == nil {
		return nil, eris.Errorf("fdic: %s search: response has no data array", c.name)
	}

	records := make([]model.RawRecord, 0, len(*resp.Data))
	for _, elem := range *resp.Data {
		if inner, ok := elem["data"].(map[string]any); ok {
			elem = inner
		}
		records = append(records, model.RawRecord(elem))
	}

	zap.L().Debug("fdic: search complete",
		zap.String("tier", c.name),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (c *Client) searchURL(crit model.Criteria) string {
	params := url.Values{
		"filters":    {buildFilters(crit)},
		"fields":     {strings.Join(projection, ",")},
		"sort_by":    {"ASSET"},
		"sort_order": {"DESC"},
		"limit":      {strconv.Itoa(crit.Limit)},
		"offset":     {"0"},
		"format":     {"json"},
	}
	return c.baseURL + "/institutions?" + params.Encode()
}
