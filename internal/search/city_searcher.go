package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/gazetteer"
	"github.com/address-normalizer/internal/normalizer"
)

const seedBatchSize = 1000

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// CityDocument is the indexed form of a gazetteer city.
type CityDocument struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	CityASCII string `json:"city_ascii"`
	StateID   string `json:"state_id"`
	StateName string `json:"state_name"`
}

// CitySearcher serves city suggestions from a Meilisearch index of the
// gazetteer. Hits are re-ranked locally with Jaro-Winkler.
type CitySearcher struct {
	client    *ClientWrapper
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// NewCitySearcher connects to Meilisearch and checks its health.
func NewCitySearcher(config SearchConfig, logger *zap.Logger) (*CitySearcher, error) {
	client := NewClientWrapper(config.Host, config.APIKey)
	if err := client.Healthy(); err != nil {
		return nil, fmt.Errorf("connect meilisearch: %w", err)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &CitySearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// BuildIndex applies the index settings and waits for them to take effect.
func (cs *CitySearcher) BuildIndex() error {
	index := cs.client.Index(cs.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"city", "city_ascii", "state_name"},
		FilterableAttributes: []string{"state_id"},
		SortableAttributes:   []string{"city"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		Synonyms: map[string][]string{
			"st":  {"saint"},
			"ft":  {"fort"},
			"mt":  {"mount"},
			"pt":  {"point"},
			"n":   {"north"},
			"s":   {"south"},
			"e":   {"east"},
			"w":   {"west"},
			"nyc": {"new york"},
		},
	})
	if err != nil {
		return fmt.Errorf("update index settings: %w", err)
	}

	cs.logger.Info("meilisearch settings submitted", zap.Int64("task_uid", task.TaskUID))
	return cs.wait(task.TaskUID)
}

// Seed loads every gazetteer city into the index in batches.
func (cs *CitySearcher) Seed(gaz *gazetteer.Gazetteer) (int, error) {
	docs := Documents(gaz)
	if len(docs) == 0 {
		return 0, errors.New("no cities to seed")
	}

	index := cs.client.Index(cs.indexName)
	for i := 0; i < len(docs); i += seedBatchSize {
		end := i + seedBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		task, err := index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("add documents %d-%d: %w", i, end, err)
		}
		cs.logger.Info("seeded city batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
		if err := cs.wait(task.TaskUID); err != nil {
			return i, fmt.Errorf("index documents %d-%d: %w", i, end, err)
		}
	}

	cs.logger.Info("meilisearch seed complete", zap.Int("total_documents", len(docs)))
	return len(docs), nil
}

// Suggest returns up to k cities matching q, optionally within state.
func (cs *CitySearcher) Suggest(q, state string, k int) ([]models.CityMatch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.New("query must not be empty")
	}
	if k <= 0 {
		k = 10
	}

	// fetch more than k so the local re-rank has room to reorder
	res, err := cs.client.SearchIndex(cs.indexName, q, FilterState(strings.ToUpper(state)), int64(k*3))
	if err != nil {
		return nil, fmt.Errorf("search cities: %w", err)
	}

	return Rerank(q, parseCityHits(res.Hits), k), nil
}

func (cs *CitySearcher) wait(taskUID int64) error {
	if err := cs.client.WaitTask(context.Background(), taskUID, cs.timeout); err != nil {
		cs.logger.Warn("meilisearch task did not complete",
			zap.Int64("task_uid", taskUID),
			zap.Duration("timeout", cs.timeout),
			zap.Error(err))
		return err
	}
	return nil
}

// Documents converts the gazetteer into index documents.
func Documents(gaz *gazetteer.Gazetteer) []CityDocument {
	cities := gaz.AllCities()
	docs := make([]CityDocument, 0, len(cities))
	for i, c := range cities {
		docs = append(docs, CityDocument{
			ID:        fmt.Sprintf("%s-%d", c.State, i),
			City:      c.Name,
			CityASCII: c.Key,
			StateID:   c.State,
			StateName: gaz.StateName(c.State),
		})
	}
	return docs
}

// Rerank orders hits by Jaro-Winkler similarity to q and keeps the top k.
// Scores are scaled to 0-100.
func Rerank(q string, hits []CityDocument, k int) []models.CityMatch {
	key := normalizer.FoldKey(q)
	matches := make([]models.CityMatch, 0, len(hits))
	for _, h := range hits {
		score := smetrics.JaroWinkler(key, normalizer.FoldKey(h.City), 0.7, 4) * 100
		matches = append(matches, models.CityMatch{City: h.City, State: h.StateID, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

func parseCityHits(hits []interface{}) []CityDocument {
	docs := make([]CityDocument, 0, len(hits))
	for _, hit := range hits {
		m, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		var d CityDocument
		d.ID, _ = m["id"].(string)
		d.City, _ = m["city"].(string)
		d.CityASCII, _ = m["city_ascii"].(string)
		d.StateID, _ = m["state_id"].(string)
		d.StateName, _ = m["state_name"].(string)
		if d.City == "" {
			continue
		}
		docs = append(docs, d)
	}
	return docs
}
