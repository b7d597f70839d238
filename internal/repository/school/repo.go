// Package school stores schools as RedisJSON documents behind an FT index.
package school

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/schoolkeuze/internal/db"
	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

// ProviderName identifies this store in errors and metrics.
const ProviderName = "redis"

const (
	pageSize       = 500
	writeBatchSize = 200
)

// store is the consumer interface for school documents (ISP).
//
//nolint:interfacebloat // the repo owns documents and their index
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, f db.TagFilter) (int, error)
}

// Repo implements the search engine's coarse provider contract on Redis.
type Repo struct {
	store  store
	prefix string
}

// New creates a school repository. prefix namespaces every key, e.g. "schoolkeuze:".
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Name returns the provider name.
func (r *Repo) Name() string { return ProviderName }

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := buildIndex(r.prefix)
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Fetch returns up to limit schools matching the coarse filter, ordered by name.
func (r *Repo) Fetch(ctx context.Context, c query.Coarse, limit int) ([]domschool.School, error) {
	if limit <= 0 {
		return nil, nil
	}
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    indexName(r.prefix),
		Filter:       coarseFilter(c),
		Limit:        limit,
		ReturnFields: []string{"$"},
		SortBy:       fieldNameKey,
	})
	if err != nil {
		return nil, fmt.Errorf("search schools: %w", err)
	}
	return r.decodeEntries(res)
}

// List returns every stored school ordered by name, paging through the index.
func (r *Repo) List(ctx context.Context) ([]domschool.School, error) {
	var out []domschool.School
	for offset := 0; ; offset += pageSize {
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName:    indexName(r.prefix),
			Offset:       offset,
			Limit:        pageSize,
			ReturnFields: []string{"$"},
			SortBy:       fieldNameKey,
		})
		if err != nil {
			return nil, fmt.Errorf("list schools at %d: %w", offset, err)
		}
		page, err := r.decodeEntries(res)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(res.Entries) < pageSize || offset+pageSize >= res.Total {
			return out, nil
		}
	}
}

// Count returns the number of stored schools.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(r.prefix), db.TagFilter{})
	if err != nil {
		return 0, fmt.Errorf("count schools: %w", err)
	}
	return n, nil
}

// Get returns a school by id.
func (r *Repo) Get(ctx context.Context, id string) (domschool.School, error) {
	key := docKey(r.prefix, id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domschool.School{}, domain.ErrNotFound
		}
		return domschool.School{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	s, err := decodeDoc(raw)
	if err != nil {
		return domschool.School{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return s, nil
}

// GetMany returns the schools with the given ids in input order; unknown ids are skipped.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domschool.School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(r.prefix, id)
	}
	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get multi: %w", err)
	}
	out := make([]domschool.School, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		s, err := decodeDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Upsert stores a single school.
func (r *Repo) Upsert(ctx context.Context, s *domschool.School) error {
	return r.UpsertMany(ctx, []domschool.School{*s})
}

// UpsertMany stores schools with pipelined JSON.SET batches.
func (r *Repo) UpsertMany(ctx context.Context, schools []domschool.School) error {
	for start := 0; start < len(schools); start += writeBatchSize {
		end := min(start+writeBatchSize, len(schools))
		items := make([]db.JSONSetItem, 0, end-start)
		for i := start; i < end; i++ {
			item, err := r.setItem(&schools[i])
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if err := r.store.JSONSetMulti(ctx, items); err != nil {
			return fmt.Errorf("json.set batch at %d: %w", start, err)
		}
	}
	return nil
}

// DeleteBySource removes every school whose source tag equals source and
// returns how many were removed.
func (r *Repo) DeleteBySource(ctx context.Context, source string) (int, error) {
	filter := db.TagFilter{Must: []db.TagCondition{{Field: fieldSource, Value: source}}}
	deleted := 0
	for {
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName:    indexName(r.prefix),
			Filter:       filter,
			Limit:        pageSize,
			ReturnFields: []string{fieldSource},
		})
		if err != nil {
			return deleted, fmt.Errorf("search source %s: %w", source, err)
		}
		if len(res.Entries) == 0 {
			return deleted, nil
		}
		keys := make([]string, len(res.Entries))
		for i, e := range res.Entries {
			keys[i] = e.Key
		}
		if err := r.store.Del(ctx, keys...); err != nil {
			return deleted, fmt.Errorf("del source %s: %w", source, err)
		}
		deleted += len(keys)
	}
}

func (r *Repo) setItem(s *domschool.School) (db.JSONSetItem, error) {
	doc := toDoc(s)
	data, err := marshalDoc(&doc)
	if err != nil {
		return db.JSONSetItem{}, fmt.Errorf("marshal school %s: %w", s.ID(), err)
	}
	return db.JSONSetItem{Key: docKey(r.prefix, s.ID()), Path: "$", Data: data}, nil
}

func (r *Repo) decodeEntries(res *db.SearchResult) ([]domschool.School, error) {
	if res == nil {
		return nil, nil
	}
	out := make([]domschool.School, 0, len(res.Entries))
	for _, e := range res.Entries {
		raw := e.Fields["$"]
		if raw == "" {
			continue
		}
		s, err := decodeDoc([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func keyPrefix(prefix string) string {
	return prefix + "school:"
}

func docKey(prefix, id string) string {
	return keyPrefix(prefix) + id
}

func indexName(prefix string) string {
	return prefix + "school:idx"
}
