package stores

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "forgelink/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSearchStore(t *testing.T, handler http.HandlerFunc) *SearchStore {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewSearchStore(client, "manufacturers", nil)
}

func TestSearchStore_SearchPool(t *testing.T) {
	var captured map[string]interface{}
	store := fakeSearchStore(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"hits": {
				"hits": [
					{"_source": {"id": "m-1", "name": "Warsaw Precision", "location": {"country": "PL"}, "isActive": true, "isVerified": true}},
					{"_source": {"id": "m-2", "name": "Krakow Metalworks", "location": {"country": "PL"}, "isActive": true, "isVerified": true}}
				]
			}
		}`)
	})

	pool, err := store.SearchPool(context.Background(), PoolQuery{
		Keywords: "CNC machining aluminum",
		Country:  "PL",
	})
	require.NoError(t, err)

	require.Len(t, pool, 2)
	assert.Equal(t, "m-1", pool[0].ID)
	assert.Equal(t, "Warsaw Precision", pool[0].Name)
	assert.Equal(t, "PL", pool[1].Location.Country)

	// The query must carry the eligibility filters and the keyword match.
	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	assert.Len(t, filters, 3)
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "multi_match")
}

func TestSearchStore_MatchAllWithoutKeywords(t *testing.T) {
	var captured map[string]interface{}
	store := fakeSearchStore(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"hits": {"hits": []}}`)
	})

	pool, err := store.SearchPool(context.Background(), PoolQuery{})
	require.NoError(t, err)
	assert.Empty(t, pool)

	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
}

func TestSearchStore_ServerError(t *testing.T) {
	store := fakeSearchStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": {"reason": "shard failure"}}`)
	})

	_, err := store.SearchPool(context.Background(), PoolQuery{Keywords: "CNC"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSearchQueryFailed))
}
