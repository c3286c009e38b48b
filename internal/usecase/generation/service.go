package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
)

// Request bounds for the generation endpoints.
const (
	DefaultLanguage      = "es"
	DefaultPracticeCount = 5
	MaxPracticeCount     = 10
	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 15
	DefaultScriptSeconds = 300
	adviceMatchLimit     = 5
)

// Models selects the model per task. Empty fields use the generator default.
type Models struct {
	Content string
	Advice  string
}

// StudyGuideInput describes a study guide request.
type StudyGuideInput struct {
	Topic       string
	ClassName   string
	Language    string
	Preferences map[string]string // format, difficulty, learning_style
}

// PracticeInput describes a practice problem set request.
type PracticeInput struct {
	Topic     string
	ClassName string
	Language  string
	Count     int
}

// QuizInput describes a multiple-choice quiz request.
type QuizInput struct {
	Topic        string
	ClassName    string
	Language     string
	NumQuestions int
}

// ScriptInput describes a video script request.
type ScriptInput struct {
	Topic           string
	ClassName       string
	Language        string
	DurationSeconds int
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is the parsed model output for a quiz request.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// Service builds prompts for the educational generation tasks and runs them
// through a Generator. A nil generator makes every call fail with domain.ErrNotConfigured.
type Service struct {
	gen    domain.Generator
	models Models
	logger *zap.Logger
}

// New creates a generation service.
func New(gen domain.Generator, models Models, logger *zap.Logger) *Service {
	return &Service{gen: gen, models: models, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool { return s.gen != nil }

// StudyGuide generates a markdown study guide.
func (s *Service) StudyGuide(ctx context.Context, in StudyGuideInput) (string, error) {
	topic, class, lang, err := normalize(in.Topic, in.ClassName, in.Language)
	if err != nil {
		return "", err
	}

	format := pref(in.Preferences, "format", "notas estructuradas")
	difficulty := pref(in.Preferences, "difficulty", "medio")
	style := pref(in.Preferences, "learning_style", "visual")

	prompt := fmt.Sprintf(`Crea una guía de estudio completa para estudiantes de %s sobre el tema: %s

Formato: %s
Nivel de dificultad: %s
Estilo de aprendizaje: %s
Idioma de la respuesta: %s

La guía debe incluir:
1. Introducción clara al tema
2. Conceptos clave explicados paso a paso
3. 5 ejemplos resueltos con explicación detallada
4. 10 problemas de práctica con respuestas al final
5. Descripciones de apoyo visual (diagramas, tablas, gráficos)
6. Resumen de puntos clave
7. Errores comunes y cómo evitarlos
8. Consejos para recordar el contenido`, class, topic, format, difficulty, style, lang)

	return s.text(ctx, domain.GenerationRequest{
		System: "Eres un creador experto de contenido educativo. Haces accesibles los temas complejos " +
			"para estudiantes de cualquier nivel e incluyes siempre ejemplos prácticos y ejercicios resueltos.",
		Prompt:      prompt,
		Model:       s.models.Content,
		Temperature: 0.3,
		MaxTokens:   4000,
	})
}

// PracticeProblems generates a numbered problem set with step-by-step solutions.
func (s *Service) PracticeProblems(ctx context.Context, in PracticeInput) (string, error) {
	topic, class, lang, err := normalize(in.Topic, in.ClassName, in.Language)
	if err != nil {
		return "", err
	}
	count, err := bounded(in.Count, DefaultPracticeCount, MaxPracticeCount, "count")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Crea %d problemas de práctica para estudiantes de %s sobre %s.
Idioma de la respuesta: %s

Para cada problema, numerado del 1 al %d, incluye:
**Problema N:** enunciado claro
**Nivel:** Fácil, Medio o Difícil
**Solución paso a paso:** cada paso con su explicación
**Respuesta final:** resultado
**Concepto evaluado:** habilidad que se practica
**Error común:** error frecuente de los estudiantes

Ordena los problemas de menor a mayor dificultad y varía el tipo de ejercicio.`, count, class, topic, lang, count)

	return s.text(ctx, domain.GenerationRequest{
		System: "Eres un profesor experto que diseña ejercicios progresivos. " +
			"Tus soluciones enseñan el proceso, no solo la respuesta.",
		Prompt:      prompt,
		Model:       s.models.Content,
		Temperature: 0.7,
		MaxTokens:   4000,
	})
}

// Quiz generates a multiple-choice quiz in JSON mode and parses it.
func (s *Service) Quiz(ctx context.Context, in QuizInput) (Quiz, error) {
	topic, class, lang, err := normalize(in.Topic, in.ClassName, in.Language)
	if err != nil {
		return Quiz{}, err
	}
	n, err := bounded(in.NumQuestions, DefaultQuizQuestions, MaxQuizQuestions, "num_questions")
	if err != nil {
		return Quiz{}, err
	}

	prompt := fmt.Sprintf(`Crea un cuestionario de %d preguntas de opción múltiple para %s sobre %s.
Idioma de la respuesta: %s

Cada pregunta tiene 4 opciones (A, B, C, D) y una sola respuesta correcta.
Usa distractores plausibles y aumenta la dificultad progresivamente.

Responde únicamente con un objeto JSON con esta forma:
{"questions": [{"question": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "correct_answer": "A", "explanation": "por qué A es correcta y las demás no"}]}`,
		n, class, topic, lang)

	res, err := s.generate(ctx, domain.GenerationRequest{
		System:      "Eres un experto en evaluación educativa. Tus preguntas son claras, justas y miden comprensión real.",
		Prompt:      prompt,
		Model:       s.models.Content,
		Temperature: 0.6,
		MaxTokens:   2000,
		JSON:        true,
	})
	if err != nil {
		return Quiz{}, err
	}

	quiz, err := ParseQuiz(res.Text)
	if err != nil {
		s.logger.Warn("Unparseable quiz output", zap.Int("length", len(res.Text)), zap.Error(err))
		return Quiz{}, err
	}
	return quiz, nil
}

// VideoScript generates a timestamped narration/visual script.
func (s *Service) VideoScript(ctx context.Context, in ScriptInput) (string, error) {
	topic, class, lang, err := normalize(in.Topic, in.ClassName, in.Language)
	if err != nil {
		return "", err
	}
	duration := in.DurationSeconds
	if duration <= 0 {
		duration = DefaultScriptSeconds
	}

	prompt := fmt.Sprintf(`Crea el guion de un video educativo de %d segundos para estudiantes de %s sobre el tema: %s
Idioma de la respuesta: %s

Estructura:
- Gancho inicial: una pregunta intrigante o un dato sorprendente y por qué importa el tema
- Contenido principal: 3 puntos clave con ejemplos visuales y analogías de la vida real
- Cierre: resumen breve, aplicación práctica e invitación a seguir practicando

Para cada sección indica [TIEMPO], NARRACIÓN, VISUAL y TEXTO EN PANTALLA.
Usa un tono amigable y motivador.`, duration, class, topic, lang)

	return s.text(ctx, domain.GenerationRequest{
		System:      "Eres un guionista experto en videos educativos dinámicos y claros que mantienen la atención del estudiante.",
		Prompt:      prompt,
		Model:       s.models.Content,
		Temperature: 0.7,
		MaxTokens:   3000,
	})
}

// ScholarshipAdvice writes a short motivating message for a student over their best matches.
func (s *Service) ScholarshipAdvice(ctx context.Context, p scholarship.Profile, matches []scholarship.Match) (string, error) {
	var b strings.Builder
	for i, m := range matches {
		if i == adviceMatchLimit {
			break
		}
		fmt.Fprintf(&b, "- %s: %d%% de compatibilidad\n", m.Record.Title, m.Score)
	}
	if b.Len() == 0 {
		b.WriteString("- Ninguna beca coincide por ahora\n")
	}

	average := "No especificado"
	if p.Average != nil {
		average = fmt.Sprintf("%.1f", *p.Average)
	}

	prompt := fmt.Sprintf(`Eres un asesor educativo. Un estudiante con este perfil busca becas:

- Nombre: %s
- Ubicación: %s
- Nivel: %s
- Promedio: %s
- Situación económica: %s
- Descripción: %s

Becas encontradas:
%s
Escribe un mensaje personalizado de máximo 150 palabras que reconozca su situación,
destaque las mejores oportunidades, dé consejos prácticos para aplicar y sea empático.`,
		orUnset(p.Name), orUnset(p.Location), orUnset(p.Level), average,
		orUnset(p.EconomicStatus), orUnset(p.Description), b.String())

	return s.text(ctx, domain.GenerationRequest{
		Prompt:      prompt,
		Model:       s.models.Advice,
		Temperature: 0.7,
		MaxTokens:   300,
	})
}

func (s *Service) text(ctx context.Context, req domain.GenerationRequest) (string, error) {
	res, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

func (s *Service) generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if s.gen == nil {
		return domain.GenerationResult{}, fmt.Errorf("ai generation: %w", domain.ErrNotConfigured)
	}
	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return res, nil
}

// ParseQuiz reads the model's JSON answer. Besides the requested
// {"questions": [...]} shape it accepts any top-level array of questions
// and a single bare question object.
func ParseQuiz(raw string) (Quiz, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Quiz{}, fmt.Errorf("quiz is not a JSON object: %w", domain.ErrProviderError)
	}

	if _, ok := fields["question"]; ok {
		var q QuizQuestion
		if err := json.Unmarshal([]byte(raw), &q); err == nil && q.Question != "" {
			return Quiz{Questions: []QuizQuestion{q}}, nil
		}
	}

	if qs := decodeQuestions(fields["questions"]); len(qs) > 0 {
		return Quiz{Questions: qs}, nil
	}
	for _, v := range fields {
		if qs := decodeQuestions(v); len(qs) > 0 {
			return Quiz{Questions: qs}, nil
		}
	}
	return Quiz{}, fmt.Errorf("quiz has no questions: %w", domain.ErrProviderError)
}

func decodeQuestions(raw json.RawMessage) []QuizQuestion {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var qs []QuizQuestion
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil
	}
	out := qs[:0]
	for _, q := range qs {
		if q.Question != "" {
			out = append(out, q)
		}
	}
	return out
}

func normalize(topic, class, lang string) (string, string, string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", "", "", domain.NewValidation("topic is required")
	}
	class = strings.TrimSpace(class)
	if class == "" {
		return "", "", "", domain.NewValidation("class_name is required")
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	return topic, class, lang, nil
}

func bounded(v, def, maxV int, name string) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < 1 || v > maxV {
		return 0, domain.NewValidation(fmt.Sprintf("%s must be between 1 and %d", name, maxV))
	}
	return v, nil
}

func pref(prefs map[string]string, key, def string) string {
	if v := strings.TrimSpace(prefs[key]); v != "" {
		return v
	}
	return def
}

func orUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return "No especificado"
	}
	return v
}
