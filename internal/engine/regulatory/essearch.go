// internal/engine/regulatory/essearch.go
package regulatory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"compliance-copilot/internal/common/database"
	"compliance-copilot/internal/common/errors"
)

// ESSearcher resolves citation text from a regulatory citation index.
type ESSearcher struct {
	client *database.ElasticsearchClient
	index  string
}

func NewESSearcher(client *database.ElasticsearchClient, index string) *ESSearcher {
	return &ESSearcher{client: client, index: index}
}

type citationHit struct {
	Hits struct {
		Hits []struct {
			Source struct {
				Key         string   `json:"key"`
				Requirement string   `json:"requirement"`
				Evidence    []string `json:"evidence"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// LookupCitation searches the index for an exact citation key and returns
// nil when the key is unknown.
func (s *ESSearcher) LookupCitation(ctx context.Context, key string) (*CitationText, error) {
	query := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"key": key,
			},
		},
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, errors.NewSearchQueryFailedError("citation_lookup", err)
	}

	res, err := s.client.Client.Search(
		s.client.Client.Search.WithContext(ctx),
		s.client.Client.Search.WithIndex(s.index),
		s.client.Client.Search.WithBody(&body),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewSearchTimeoutError("citation_lookup")
		}
		return nil, errors.NewSearchQueryFailedError("citation_lookup", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("citation_lookup",
			fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed citationHit
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError("citation_lookup", err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, nil
	}

	source := parsed.Hits.Hits[0].Source
	return &CitationText{
		Requirement: source.Requirement,
		Evidence:    source.Evidence,
	}, nil
}
