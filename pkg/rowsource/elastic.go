package rowsource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/olivere/elastic/v7"
)

const (
	// IDColumn holds the document id of Elasticsearch rows.
	IDColumn = "_id"

	defaultSearchSize = 1000
)

// Elastic reads documents from an Elasticsearch index.
type Elastic struct {
	client *elastic.Client
}

// NewElastic connects to the cluster at url. Sniffing is disabled so a
// single-node or proxied cluster works.
func NewElastic(url string) (*Elastic, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create elastic client: %w", err)
	}
	return &Elastic{client: client}, nil
}

// Rows searches q.Index with the query-string q.Statement (all documents when
// empty), sorted ascending by q.OrderBy when set.
func (e *Elastic) Rows(ctx context.Context, q Query) ([]*excelexport.Bag, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("elastic source: empty index")
	}

	var query elastic.Query = elastic.NewMatchAllQuery()
	if q.Statement != "" {
		query = elastic.NewQueryStringQuery(q.Statement)
	}
	size := q.Limit
	if size <= 0 {
		size = defaultSearchSize
	}

	search := e.client.Search(q.Index).Query(query).Size(size)
	if q.OrderBy != "" {
		search = search.Sort(q.OrderBy, true)
	}
	res, err := search.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("elastic source: search: %w", err)
	}
	if res.Hits == nil {
		return nil, nil
	}
	return hitsToBags(res.Hits.Hits)
}

// hitsToBags decodes hit sources keeping field order. Keys follow the first
// hit; fields missing from later hits hold nil and extra fields are appended.
func hitsToBags(hits []*elastic.SearchHit) ([]*excelexport.Bag, error) {
	names := []string{IDColumn}
	seen := map[string]bool{IDColumn: true}
	sources := make([]*excelexport.Bag, len(hits))
	for i, hit := range hits {
		src := excelexport.NewBag()
		if len(hit.Source) > 0 {
			if err := json.Unmarshal(hit.Source, src); err != nil {
				return nil, fmt.Errorf("elastic source: decode hit %s: %w", hit.Id, err)
			}
		}
		for _, k := range src.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
		sources[i] = src
	}

	bags := make([]*excelexport.Bag, len(hits))
	for i, hit := range hits {
		bag := excelexport.NewBag().Set(IDColumn, hit.Id)
		for _, name := range names[1:] {
			v, _ := sources[i].Lookup(name)
			bag.Set(name, v)
		}
		bags[i] = bag
	}
	return bags, nil
}
