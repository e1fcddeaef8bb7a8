package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"astroaspects/internal/chart"
)

// ChartFetcher retrieves a chart bundle from another system.
type ChartFetcher interface {
	FetchChart(ctx context.Context, chartID int64) (chart.Bundle, error)
}

// ReadChartFile decodes one or more chart documents from a YAML or JSON file.
// A file holds either a single document or a list of them.
func ReadChartFile(path string) ([]chart.Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart file: %w", err)
	}

	var docs []chart.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		docs, err = decodeJSON(raw)
	case ".yaml", ".yml":
		docs, err = decodeYAML(raw)
	default:
		return nil, fmt.Errorf("chart file %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bundles := make([]chart.Bundle, 0, len(docs))
	for i, doc := range docs {
		b, err := doc.Bundle()
		if err != nil {
			return nil, fmt.Errorf("%s document %d: %w", path, i+1, err)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

func decodeJSON(raw []byte) ([]chart.Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []chart.Document
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var doc chart.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return []chart.Document{doc}, nil
}

func decodeYAML(raw []byte) ([]chart.Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var docs []chart.Document
		if err := node.Decode(&docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var doc chart.Document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return []chart.Document{doc}, nil
}

// WriteChartFile encodes bundles as YAML, or JSON when path ends in .json.
func WriteChartFile(path string, bundles ...chart.Bundle) error {
	docs := make([]chart.Document, 0, len(bundles))
	for _, b := range bundles {
		docs = append(docs, chart.NewDocument(b))
	}

	var (
		out []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		out, err = json.MarshalIndent(docs, "", "  ")
	} else {
		out, err = yaml.Marshal(docs)
	}
	if err != nil {
		return fmt.Errorf("encode charts: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write chart file: %w", err)
	}
	return nil
}
