// Package result parses _search responses into typed values.
package result

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

//go:embed response.schema.json
var responseSchemaJSON []byte

var responseSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(responseSchemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("failed to load response schema: %w", err)
	}
	return schema.Resolve(nil)
})

// Parse decodes a raw _search response. A response missing a required field
// or holding a value of the wrong type fails as a whole with a
// *SchemaValidationError; nothing partial is returned.
func Parse(data []byte) (*Result, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaValidationError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &SchemaValidationError{Reason: "response is not a JSON object"}
	}
	if err := checkRequired(obj); err != nil {
		return nil, err
	}
	resolved, err := responseSchema()
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(obj); err != nil {
		return nil, &SchemaValidationError{Reason: err.Error()}
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &SchemaValidationError{Reason: err.Error()}
	}
	return &r, nil
}

// ParseMap is Parse for a response that was already decoded into a map.
func ParseMap(doc map[string]any) (*Result, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return Parse(data)
}

func checkRequired(doc map[string]any) error {
	if err := requireFields(doc, "", "took", "timed_out", "_shards"); err != nil {
		return err
	}
	if shards, ok := doc["_shards"].(map[string]any); ok {
		if err := requireFields(shards, "_shards", "total", "successful", "skipped", "failed"); err != nil {
			return err
		}
	}
	if hits, ok := doc["hits"].(map[string]any); ok {
		if err := requireFields(hits, "hits", "total", "hits"); err != nil {
			return err
		}
		if total, ok := hits["total"].(map[string]any); ok {
			if err := requireFields(total, "hits.total", "value", "relation"); err != nil {
				return err
			}
		}
		list, _ := hits["hits"].([]any)
		for i, h := range list {
			hit, ok := h.(map[string]any)
			if !ok {
				continue
			}
			if err := requireFields(hit, fmt.Sprintf("hits.hits[%d]", i), "_index", "_id", "_score"); err != nil {
				return err
			}
		}
	}
	if aggs, ok := doc["aggregations"].(map[string]any); ok {
		for name, a := range aggs {
			if agg, ok := a.(map[string]any); ok {
				if err := checkBuckets(agg, "aggregations."+name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkBuckets(agg map[string]any, path string) error {
	buckets, _ := agg["buckets"].([]any)
	for i, b := range buckets {
		bucket, ok := b.(map[string]any)
		if !ok {
			continue
		}
		bpath := fmt.Sprintf("%s.buckets[%d]", path, i)
		if err := requireFields(bucket, bpath, "key", "doc_count"); err != nil {
			return err
		}
		for name, v := range bucket {
			if sub, ok := v.(map[string]any); ok {
				if err := checkBuckets(sub, bpath+"."+name); err != nil {
					return err
				}
			}
		}
	}
	for name, v := range agg {
		if sub, ok := v.(map[string]any); ok && !aggregationKeys[name] {
			if err := checkBuckets(sub, path+"."+name); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireFields(obj map[string]any, path string, fields ...string) error {
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return &SchemaValidationError{Path: path, Field: f}
		}
	}
	return nil
}
