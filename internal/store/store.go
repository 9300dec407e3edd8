// Package store loads the annotated document export and caches parsed
// documents in memory, keyed by export path and schema revision so a revision
// bump invalidates stale entries.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/oii-seeing-migration/mignar/internal/extract"
	"github.com/oii-seeing-migration/mignar/internal/model"
)

// Store reads documents from a JSON or NDJSON export file.
type Store struct {
	path              string
	revision          string
	consolidatedField string
	cache             *gocache.Cache
	ttl               time.Duration
}

// New creates a store for the export at path. ttl <= 0 disables caching.
func New(path, revision, consolidatedField string, ttl time.Duration) *Store {
	var c *gocache.Cache
	if ttl > 0 {
		c = gocache.New(ttl, 2*ttl)
	}
	return &Store{
		path:              path,
		revision:          revision,
		consolidatedField: consolidatedField,
		cache:             c,
		ttl:               ttl,
	}
}

// Key derives the cache key for an export path and schema revision.
func Key(path, revision string) string {
	sum := sha256.Sum256([]byte(path))
	return "mignar:" + revision + ":" + hex.EncodeToString(sum[:])
}

// Load returns all documents from the export, from cache when possible.
func (s *Store) Load() ([]*model.Document, error) {
	key := Key(s.path, s.revision)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			return cached.([]*model.Document), nil
		}
	}

	docs, err := s.readDocuments()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, docs, s.ttl)
	}
	return docs, nil
}

// Invalidate drops the cached documents for this store's export.
func (s *Store) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(Key(s.path, s.revision))
	}
}

// ByTitle returns the document with the given title, or an error naming the
// miss.
func (s *Store) ByTitle(title string) (*model.Document, error) {
	docs, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.Title == title {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document not found: %q", title)
}

// readDocuments parses the export. The file is either a single JSON array or
// newline-delimited JSON objects.
func (s *Store) readDocuments() ([]*model.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("export is empty: %s", s.path)
	}

	var records []map[string]interface{}
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("parse export: %w", err)
		}
	} else {
		for i, line := range strings.Split(trimmed, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var record map[string]interface{}
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				return nil, fmt.Errorf("parse export line %d: %w", i+1, err)
			}
			records = append(records, record)
		}
	}

	docs := make([]*model.Document, 0, len(records))
	for _, record := range records {
		docs = append(docs, s.documentFromRecord(record))
	}
	return docs, nil
}

// documentFromRecord maps one export record to a document. Annotation payload
// fields keep their raw serialized form; parsing is the extractor's job.
func (s *Store) documentFromRecord(record map[string]interface{}) *model.Document {
	doc := &model.Document{
		Title:       stringValue(record, "title"),
		URL:         stringValue(record, "url"),
		Body:        stringValue(record, "body"),
		PubDate:     stringValue(record, "pub_date"),
		SourceTable: stringValue(record, "source_table"),
		Theme:       stringValue(record, "theme"),
	}
	if doc.Theme == "" {
		doc.Theme = stringValue(record, "dominant_theme")
	}

	for field, value := range record {
		if !strings.HasPrefix(field, model.AnnotationFieldPrefix) {
			continue
		}
		modelName := strings.TrimPrefix(field, model.AnnotationFieldPrefix)
		if payload := rawPayload(value); payload != "" {
			if doc.Payloads == nil {
				doc.Payloads = make(map[string]string)
			}
			doc.Payloads[modelName] = payload
		}
	}

	if s.consolidatedField != "" {
		doc.Consolidated = rawPayload(record[s.consolidatedField])
	}

	return doc
}

// rawPayload normalizes a payload field to its serialized JSON form. Exports
// carry annotation lists either as JSON strings or as already-parsed arrays.
func rawPayload(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func stringValue(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

// Filter narrows a document list. Empty fields match everything; Meso matches
// documents whose annotations mention the meso narrative.
type Filter struct {
	SourceTable string
	Theme       string
	Meso        string
}

// Apply returns the documents passing every set criterion.
func (f Filter) Apply(docs []*model.Document) []*model.Document {
	var out []*model.Document
	for _, doc := range docs {
		if f.SourceTable != "" && doc.SourceTable != f.SourceTable {
			continue
		}
		if f.Theme != "" && doc.Theme != f.Theme {
			continue
		}
		if f.Meso != "" && !extract.HasMeso(doc, f.Meso) {
			continue
		}
		out = append(out, doc)
	}
	return out
}
