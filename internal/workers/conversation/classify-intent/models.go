// internal/workers/conversation/classify-intent/models.go
package classifyintent

// Input is the job payload: one raw user utterance.
type Input struct {
	Text string `json:"text"`
}

// Output carries the classification back into the process instance.
type Output struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Slots      map[string]interface{} `json:"slots"`
	Source     string                 `json:"source"`
}
