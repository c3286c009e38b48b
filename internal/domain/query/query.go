package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Defaults applied when a request leaves a field empty.
const (
	DefaultLanguage   = "es"
	DefaultGradeLevel = "high_school"
	DefaultMaxResults = 5
	MaxMaxResults     = 20
)

// Query is a validated resource search request (immutable value object).
type Query struct {
	topic      string
	language   string
	gradeLevel string
	maxResults int
}

// New validates and creates a Query.
// Subject and topic are combined as "subject topic"; at least one is required.
// Zero maxResults falls back to DefaultMaxResults, otherwise it must be within 1..MaxMaxResults.
func New(subject, topic, language, gradeLevel string, maxResults int) (Query, error) {
	subject = strings.TrimSpace(subject)
	topic = strings.TrimSpace(topic)

	var combined string
	switch {
	case subject != "" && topic != "":
		combined = subject + " " + topic
	case topic != "":
		combined = topic
	case subject != "":
		combined = subject
	default:
		return Query{}, fmt.Errorf("topic or subject is required")
	}

	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 1 || maxResults > MaxMaxResults {
		return Query{}, fmt.Errorf("max_results must be between 1 and %d", MaxMaxResults)
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}
	gradeLevel = strings.TrimSpace(gradeLevel)
	if gradeLevel == "" {
		gradeLevel = DefaultGradeLevel
	}

	return Query{
		topic:      combined,
		language:   language,
		gradeLevel: gradeLevel,
		maxResults: maxResults,
	}, nil
}

// Topic returns the combined search topic.
func (q Query) Topic() string { return q.topic }

// Language returns the lowercase language code.
func (q Query) Language() string { return q.language }

// GradeLevel returns the grade level. Metadata only, never a filter.
func (q Query) GradeLevel() string { return q.gradeLevel }

// MaxResults returns the result cap.
func (q Query) MaxResults() int { return q.maxResults }

// Fingerprint returns a cache key for the query under the given kind,
// e.g. "text:es:high_school:<sha256>". The topic is case- and space-normalized before hashing.
func (q Query) Fingerprint(kind string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(q.topic)), " ")
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, q.maxResults)))
	return fmt.Sprintf("%s:%s:%s:%s", kind, q.language, q.gradeLevel, hex.EncodeToString(h[:]))
}
