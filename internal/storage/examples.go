package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cohera/internal/util"
	"cohera/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Example is one curated paragraph users can score without writing their own.
type Example struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// LoadExamples reads the example corpus from S3 when a client is configured,
// falling back to the local JSON file named by EXAMPLES_FILE. The corpus is
// a JSON array of {title, text} objects.
func LoadExamples(ctx context.Context, client *s3.Client) ([]Example, error) {
	var raw []byte
	var err error

	if client != nil {
		key := util.GetEnvString("EXAMPLES_S3_KEY", "examples.json")
		raw, err = GetFile(ctx, client, key)
		if err != nil {
			logger.Warn("Failed to load examples from S3, trying local file", "err", err)
		}
	}

	if raw == nil {
		path := util.GetEnvString("EXAMPLES_FILE", "examples.json")
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load examples: %w", err)
		}
	}

	var examples []Example
	if err := json.Unmarshal(raw, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}
	return examples, nil
}
