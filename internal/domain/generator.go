package domain

import "context"

// GeneratedContent holds the fields the generator overwrites.
type GeneratedContent struct {
	About      string `json:"about"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Projects   string `json:"projects"`
}

// ContentGenerator produces section content for a profession.
type ContentGenerator interface {
	Generate(ctx context.Context, profession string) (*GeneratedContent, error)
}

// ObjectStore keeps binary artifacts (export archives, OG images).
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
}
