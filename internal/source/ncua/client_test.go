package ncua

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

func newTestClient(url string, d Dialect) *Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: "test", Timeout: 5 * time.Second})
	return NewClient("dataset-"+d.Name, url, d, f)
}

func TestBuildWhere(t *testing.T) {
	crit := model.Criteria{State: "TX", MinAssetsUSD: 100_000_000, MaxAssetsUSD: 1_000_000_500, Name: "o'brien"}

	assert.Equal(t,
		"state='TX' AND total_assets>=100000 AND total_assets<=1000001 AND upper(cu_name) like '%O''BRIEN%'",
		buildWhere(DialectCurrent, crit))
	assert.Equal(t,
		"STATE='TX' AND TOTAL_ASSETS>=100000 AND TOTAL_ASSETS<=1000001 AND upper(CU_NAME) like '%O''BRIEN%'",
		buildWhere(DialectLegacy, crit))
	assert.Equal(t, "", buildWhere(DialectCompact, model.Criteria{}))
}

func TestDialectByName(t *testing.T) {
	assert.Equal(t, DialectCompact, DialectByName("compact"))
	assert.Equal(t, DialectLegacy, DialectByName("legacy"))
	assert.Equal(t, DialectCurrent, DialectByName(""))
	assert.Equal(t, DialectCurrent, DialectByName("nope"))
}

func TestSearch_SendsDialectQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("$limit"))
		assert.Equal(t, "totalassets DESC", q.Get("$order"))
		assert.Equal(t, "state='IA'", q.Get("$where"))
		_, _ = w.Write([]byte(`[{"charternumber":"60659","cuname":"GREENSTATE","state":"IA","totalassets":"12440870","nummembers":"430000"}]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL+"/resource/abcd.json", DialectCompact).
		Search(context.Background(), model.Criteria{State: "ia", Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)

	inst, err := normalize.New(Schema).Normalize(records[0], model.SourceNCUA)
	require.NoError(t, err)
	assert.Equal(t, "Greenstate", inst.Name)
	assert.Equal(t, int64(12_440_870_000), inst.AssetsUSD)
	assert.Equal(t, int64(430_000), inst.MemberCount)
}

func TestSearch_NoWhereWhenUnfiltered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["$where"]
		assert.False(t, ok)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL, DialectCurrent).Search(context.Background(), model.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_TruncatesAtLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := range 20 {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"cu_number":%d}`, i)
	}
	b.WriteString("]")
	payload := b.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL, DialectCurrent).Search(context.Background(), model.Criteria{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestSearch_NotAnArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"dataset not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, DialectCurrent).Search(context.Background(), model.Criteria{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
