package pathwise

import (
	"context"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
)

// Resource is a normalized educational resource. Exactly one of Book,
// Paper, Document or Video is set, matching Kind.
type Resource = resource.Item

// Fetcher is a content catalog. Errors are absorbed by the client: a failing
// provider contributes no items and trips its circuit breaker after repeated
// failures.
type Fetcher interface {
	Fetch(ctx context.Context, topic, language string, maxResults int) ([]Resource, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, topic, language string, maxResults int) ([]Resource, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, topic, language string, maxResults int) ([]Resource, error) {
	return f(ctx, topic, language, maxResults)
}

// Generator is a text generation backend.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single chat-style completion request.
type GenerationRequest struct {
	System      string
	Prompt      string
	Model       string // empty = backend default
	Temperature float32
	MaxTokens   int
	JSON        bool // the caller expects a JSON object
}

// GenerationResult carries the generated text and token usage.
// TotalTokens feeds the token budget.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}

// Query is a content search request. Subject or Topic is required.
type Query struct {
	Subject    string
	Topic      string
	Language   string // ISO 639-1, default "es"
	GradeLevel string
	MaxResults int // per provider, 1..20, default 5
}

// SearchResult is a merged provider answer.
type SearchResult struct {
	Items     []Resource
	FromCache bool
}

// Profile is a student profile for scholarship matching.
type Profile struct {
	Name           string
	Level          string   // secundaria, preparatoria, universidad, posgrado
	Average        *float64 // 0..10, nil when unknown
	EconomicStatus string   // baja, media-baja, media, media-alta, alta
	Location       string
	FieldOfStudy   string
	Description    string
}

// Scholarship is a catalog entry.
type Scholarship struct {
	ID           string
	Title        string
	Institution  string
	Levels       []string
	Description  string
	Amount       string
	Requirements []string
	Deadline     string
	URL          string
	Tags         []string
}

// ScholarshipMatch is a scored catalog entry.
type ScholarshipMatch struct {
	Scholarship Scholarship
	Score       int
	Reasons     []string
}

// ScholarshipResult holds matches sorted by score and, when AI is
// configured, personalized advice.
type ScholarshipResult struct {
	Matches []ScholarshipMatch
	Advice  string
}

// StudyGuideRequest describes a study guide.
type StudyGuideRequest struct {
	Topic       string
	ClassName   string
	Language    string
	Preferences map[string]string // format, difficulty, learning_style
}

// PracticeRequest describes a practice problem set.
type PracticeRequest struct {
	Topic     string
	ClassName string
	Language  string
	Count     int // 1..10, default 5
}

// QuizRequest describes a multiple-choice quiz.
type QuizRequest struct {
	Topic        string
	ClassName    string
	Language     string
	NumQuestions int // 1..15, default 5
}

// ScriptRequest describes a narrated video script.
type ScriptRequest struct {
	Topic           string
	ClassName       string
	Language        string
	DurationSeconds int // default 300
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string
	Options       []string
	CorrectAnswer string
	Explanation   string
}
