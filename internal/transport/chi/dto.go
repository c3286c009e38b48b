package chi

import (
	"time"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- search ---

type searchRequest struct {
	Subject    string `json:"subject" validate:"max=200"`
	Topic      string `json:"topic" validate:"max=500"`
	Language   string `json:"language" validate:"omitempty,max=10"`
	GradeLevel string `json:"grade_level" validate:"omitempty,max=50"`
	MaxResults int    `json:"max_results" validate:"omitempty,min=1,max=20"`
}

type textSearchResponse struct {
	Success   bool            `json:"success"`
	Results   []resource.Item `json:"results"`
	FromCache bool            `json:"from_cache"`
	Query     string          `json:"query"`
	Total     int             `json:"total"`
}

type videoSearchResponse struct {
	Success   bool            `json:"success"`
	Results   []resource.Item `json:"results"`
	FromCache bool            `json:"from_cache"`
	Count     int             `json:"count"`
}

// --- generation ---

type studyGuideRequest struct {
	Topic       string            `json:"topic" validate:"required,max=500"`
	ClassName   string            `json:"class_name" validate:"required,max=200"`
	Language    string            `json:"language" validate:"omitempty,max=10"`
	Preferences map[string]string `json:"preferences"`
}

type studyGuideResponse struct {
	Success   bool   `json:"success"`
	Content   string `json:"content"`
	Format    string `json:"format"`
	Topic     string `json:"topic"`
	ClassName string `json:"class_name"`
}

type practiceRequest struct {
	Topic     string `json:"topic" validate:"required,max=500"`
	ClassName string `json:"class_name" validate:"required,max=200"`
	Language  string `json:"language" validate:"omitempty,max=10"`
	Count     int    `json:"count" validate:"omitempty,min=1,max=10"`
}

type practiceResponse struct {
	Success  bool   `json:"success"`
	Problems string `json:"problems"`
	Count    int    `json:"count"`
	Topic    string `json:"topic"`
}

type quizRequest struct {
	Topic        string `json:"topic" validate:"required,max=500"`
	ClassName    string `json:"class_name" validate:"required,max=200"`
	Language     string `json:"language" validate:"omitempty,max=10"`
	NumQuestions int    `json:"num_questions" validate:"omitempty,min=1,max=15"`
}

type quizResponse struct {
	Success        bool              `json:"success"`
	Quiz           generationuc.Quiz `json:"quiz"`
	TotalQuestions int               `json:"total_questions"`
	Topic          string            `json:"topic"`
}

type videoScriptRequest struct {
	Topic     string `json:"topic" validate:"required,max=500"`
	ClassName string `json:"class_name" validate:"required,max=200"`
	Language  string `json:"language" validate:"omitempty,max=10"`
	Duration  int    `json:"duration" validate:"omitempty,min=30,max=3600"`
}

type videoScriptResponse struct {
	Success  bool           `json:"success"`
	Script   string         `json:"script"`
	Metadata scriptMetadata `json:"metadata"`
}

type scriptMetadata struct {
	Topic     string `json:"topic"`
	ClassName string `json:"class_name"`
	Duration  int    `json:"duration"`
}

// --- media ---

type exportResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"download_url"`
	Message     string `json:"message"`
}

// --- scholarships ---

type profileRequest struct {
	Nombre             string   `json:"nombre" validate:"max=200"`
	NivelEducativo     string   `json:"nivel_educativo" validate:"required,max=50"`
	Promedio           *float64 `json:"promedio" validate:"omitempty,gte=0,lte=10"`
	SituacionEconomica string   `json:"situacion_economica" validate:"max=50"`
	Ubicacion          string   `json:"ubicacion" validate:"max=200"`
	AreaInteres        string   `json:"area_interes" validate:"max=200"`
	Descripcion        string   `json:"descripcion" validate:"max=2000"`
}

func (p profileRequest) toDomain() scholarship.Profile {
	return scholarship.Profile{
		Name:           p.Nombre,
		Level:          p.NivelEducativo,
		Average:        p.Promedio,
		EconomicStatus: p.SituacionEconomica,
		Location:       p.Ubicacion,
		FieldOfStudy:   p.AreaInteres,
		Description:    p.Descripcion,
	}
}

type profileEcho struct {
	Nombre    string `json:"nombre"`
	Nivel     string `json:"nivel"`
	Ubicacion string `json:"ubicacion"`
}

// scholarshipMatch is a catalog record annotated with its score.
type scholarshipMatch struct {
	scholarship.Record
	MatchScore   int      `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

func matchesToDTO(matches []scholarship.Match, limit int) []scholarshipMatch {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]scholarshipMatch, len(matches))
	for i, m := range matches {
		reasons := m.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		out[i] = scholarshipMatch{Record: m.Record, MatchScore: m.Score, MatchReasons: reasons}
	}
	return out
}

type scholarshipSearchResponse struct {
	Success          bool               `json:"success"`
	Profile          profileEcho        `json:"profile"`
	Scholarships     []scholarshipMatch `json:"scholarships"`
	Total            int                `json:"total"`
	AIRecommendation string             `json:"ai_recommendation,omitempty"`
}

type scholarshipListResponse struct {
	Success      bool                 `json:"success"`
	Scholarships []scholarship.Record `json:"scholarships"`
	Total        int                  `json:"total"`
}

type scholarshipResponse struct {
	Success     bool               `json:"success"`
	Scholarship scholarship.Record `json:"scholarship"`
}

type recommendResponse struct {
	Success         bool               `json:"success"`
	Recommendation  string             `json:"recommendation"`
	TopScholarships []scholarshipMatch `json:"top_scholarships"`
}

// --- usage / health ---

type usageResponse struct {
	Success       bool         `json:"success"`
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Budget        budgetStatus `json:"budget"`
}

type budgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
