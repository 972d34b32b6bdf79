package fdic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/fetcher"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestClient(url string) *Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: "test", Timeout: 5 * time.Second})
	return NewClient("api", url, f)
}

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name string
		crit model.Criteria
		want string
	}{
		{"empty", model.Criteria{}, "ACTIVE:1"},
		{"state", model.Criteria{State: "TX"}, `ACTIVE:1,STALP:"TX"`},
		{"min only", model.Criteria{MinAssetsUSD: 100_000_000}, "ACTIVE:1,ASSET:[100000 TO *]"},
		{"max rounds up", model.Criteria{MaxAssetsUSD: 1_500}, "ACTIVE:1,ASSET:[* TO 2]"},
		{"range", model.Criteria{MinAssetsUSD: 1_000_000, MaxAssetsUSD: 5_000_000}, "ACTIVE:1,ASSET:[1000 TO 5000]"},
		{"name escaped", model.Criteria{Name: "first nat"}, `ACTIVE:1,NAME:*FIRST\ NAT*`},
		{"name metachars", model.Criteria{Name: `a:b"c`}, `ACTIVE:1,NAME:*A\:B\"C*`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilters(tt.crit))
		})
	}
}

func TestSearch_SendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/institutions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `ACTIVE:1,STALP:"CO"`, q.Get("filters"))
		assert.Equal(t, "ASSET", q.Get("sort_by"))
		assert.Equal(t, "DESC", q.Get("sort_order"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Contains(t, q.Get("fields"), "CERT")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL+"/").Search(context.Background(), model.Criteria{State: " co ", Limit: 25})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_UnwrapsNestedData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"data":{"CERT":3511,"NAME":"FIRSTBANK","STALP":"CO","ASSET":28310512}},
			{"CERT":9268,"NAME":"FIRST NATIONAL BANK OF GILLETTE","STALP":"WY","ASSET":82400}
		],"meta":{"total":2}}`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).Search(context.Background(), model.Criteria{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "FIRSTBANK", records[0]["NAME"])
	assert.Equal(t, "WY", records[1]["STALP"])

	inst, err := normalize.New(Schema).Normalize(records[0], model.SourceFDIC)
	require.NoError(t, err)
	assert.Equal(t, int64(28_310_512_000), inst.AssetsUSD)
	assert.Equal(t, "3511", inst.RegulatoryID)
}

func TestSearch_MissingDataArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"retired"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), model.Criteria{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data array")
}

func TestSearch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), model.Criteria{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fdic: api search")
}

func TestName(t *testing.T) {
	assert.Equal(t, "mirror", NewClient("mirror", DefaultBaseURL, nil).Name())
}
