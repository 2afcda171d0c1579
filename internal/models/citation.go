// internal/models/citation.go
package models

// CitationOrigin distinguishes statically configured citations from ones
// inferred at runtime, so a renderer can visually mark the difference.
type CitationOrigin string

const (
	CitationConfigured CitationOrigin = "configured"
	CitationInferred   CitationOrigin = "inferred"
)

// Citation is one regulatory requirement applicable to a submission.
type Citation struct {
	Key         string         `json:"key"`
	Requirement string         `json:"requirement"`
	Evidence    []string       `json:"evidence,omitempty"`
	Origin      CitationOrigin `json:"origin"`
}
