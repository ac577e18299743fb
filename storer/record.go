package storer

type Record struct {
	Id       string
	Values   []float32
	Metadata map[string]any
}

type Match struct {
	Id       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}
