package embedder

import "context"

type TaskType string

const (
	TaskDocument TaskType = "document"
	TaskQuery    TaskType = "query"
)

// Embedder turns text into a unit-length vector of Dimensions() components.
type Embedder interface {
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)
	Model() string
	Dimensions() int
}
