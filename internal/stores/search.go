// internal/stores/search.go
package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/common/logger"
	"forgelink/internal/models"
)

const defaultPoolSize = 500

// PoolQuery narrows the candidate pool at the search layer before the engine
// filters and scores. All criteria are optional; eligibility flags always
// apply.
type PoolQuery struct {
	// Keywords is free text matched against declared capabilities.
	Keywords string
	// Country restricts candidates to one location.country value.
	Country string
	// Size caps the returned pool; zero means the default.
	Size int
}

// SearchStore looks up candidate pools in Elasticsearch, where manufacturer
// profiles are indexed on every profile change.
type SearchStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchStore(client *elasticsearch.Client, index string, log logger.Logger) *SearchStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SearchStore{client: client, index: index, logger: log}
}

// SearchPool returns eligible manufacturer profiles matching the query.
func (s *SearchStore) SearchPool(ctx context.Context, q PoolQuery) ([]*models.ManufacturerProfile, error) {
	size := q.Size
	if size <= 0 {
		size = defaultPoolSize
	}

	body, err := json.Marshal(buildPoolQuery(q))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.ManufacturerProfile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}

	pool := make([]*models.ManufacturerProfile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		p := hit.Source
		pool = append(pool, &p)
	}

	s.logger.Debug("searched manufacturer pool", map[string]interface{}{
		"keywords": q.Keywords,
		"country":  q.Country,
		"count":    len(pool),
	})
	return pool, nil
}

func buildPoolQuery(q PoolQuery) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
		map[string]interface{}{"term": map[string]interface{}{"isVerified": true}},
	}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": q.Keywords,
				"fields": []string{
					"capabilities.processes^3",
					"capabilities.materials^2",
					"capabilities.certifications",
					"capabilities.industries",
				},
				"type": "best_fields",
			},
		})
	}
	if q.Country != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location.country": q.Country},
		})
	}
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
		"sort": []map[string]interface{}{{"id": "asc"}},
	}
}
