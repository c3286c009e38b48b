package chi

import (
	"net/http"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/query"
	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
)

// SearchText handles POST /api/text/search.
func (s *Server) SearchText(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.text.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := nonNilItems(res.Items)
	writeJSON(w, http.StatusOK, textSearchResponse{
		Success:   true,
		Results:   items,
		FromCache: res.FromCache,
		Query:     q.Topic(),
		Total:     len(items),
	})
}

// SearchVideos handles POST /api/videos/search.
func (s *Server) SearchVideos(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.videos.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := nonNilItems(res.Items)
	writeJSON(w, http.StatusOK, videoSearchResponse{
		Success:   true,
		Results:   items,
		FromCache: res.FromCache,
		Count:     len(items),
	})
}

// GenerateStudyGuide handles POST /api/text/generate.
func (s *Server) GenerateStudyGuide(w http.ResponseWriter, r *http.Request) {
	var req studyGuideRequest
	if !s.decode(w, r, &req) {
		return
	}

	content, err := s.generation.StudyGuide(r.Context(), generationuc.StudyGuideInput{
		Topic:       req.Topic,
		ClassName:   req.ClassName,
		Language:    req.Language,
		Preferences: req.Preferences,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, studyGuideResponse{
		Success:   true,
		Content:   content,
		Format:    "markdown",
		Topic:     req.Topic,
		ClassName: req.ClassName,
	})
}

// GeneratePractice handles POST /api/text/practice.
func (s *Server) GeneratePractice(w http.ResponseWriter, r *http.Request) {
	var req practiceRequest
	if !s.decode(w, r, &req) {
		return
	}

	problems, err := s.generation.PracticeProblems(r.Context(), generationuc.PracticeInput{
		Topic:     req.Topic,
		ClassName: req.ClassName,
		Language:  req.Language,
		Count:     req.Count,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, practiceResponse{
		Success:  true,
		Problems: problems,
		Count:    orDefault(req.Count, generationuc.DefaultPracticeCount),
		Topic:    req.Topic,
	})
}

// GenerateQuiz handles POST /api/text/quiz.
func (s *Server) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !s.decode(w, r, &req) {
		return
	}

	quiz, err := s.generation.Quiz(r.Context(), generationuc.QuizInput{
		Topic:        req.Topic,
		ClassName:    req.ClassName,
		Language:     req.Language,
		NumQuestions: req.NumQuestions,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizResponse{
		Success:        true,
		Quiz:           quiz,
		TotalQuestions: len(quiz.Questions),
		Topic:          req.Topic,
	})
}

// GenerateVideoScript handles POST /api/videos/script.
func (s *Server) GenerateVideoScript(w http.ResponseWriter, r *http.Request) {
	var req videoScriptRequest
	if !s.decode(w, r, &req) {
		return
	}

	script, err := s.generation.VideoScript(r.Context(), generationuc.ScriptInput{
		Topic:           req.Topic,
		ClassName:       req.ClassName,
		Language:        req.Language,
		DurationSeconds: req.Duration,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, videoScriptResponse{
		Success: true,
		Script:  script,
		Metadata: scriptMetadata{
			Topic:     req.Topic,
			ClassName: req.ClassName,
			Duration:  orDefault(req.Duration, generationuc.DefaultScriptSeconds),
		},
	})
}

func (req searchRequest) toQuery() (query.Query, error) {
	q, err := query.New(req.Subject, req.Topic, req.Language, req.GradeLevel, req.MaxResults)
	if err != nil {
		return query.Query{}, domain.NewValidation(err.Error())
	}
	return q, nil
}

func nonNilItems(items []resource.Item) []resource.Item {
	if items == nil {
		return []resource.Item{}
	}
	return items
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
