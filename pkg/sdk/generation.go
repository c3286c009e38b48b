package pathwise

import (
	"context"
	"fmt"
	"time"

	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
)

// StudyGuide generates a markdown study guide.
func (c *Client) StudyGuide(ctx context.Context, req StudyGuideRequest) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("study_guide", start, err) }()

	out, err := c.generation.StudyGuide(ctx, generationuc.StudyGuideInput{
		Topic:       req.Topic,
		ClassName:   req.ClassName,
		Language:    req.Language,
		Preferences: req.Preferences,
	})
	if err != nil {
		return "", fmt.Errorf("study guide: %w", err)
	}
	return out, nil
}

// PracticeProblems generates graded practice problems with solutions.
func (c *Client) PracticeProblems(ctx context.Context, req PracticeRequest) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("practice_problems", start, err) }()

	out, err := c.generation.PracticeProblems(ctx, generationuc.PracticeInput{
		Topic:     req.Topic,
		ClassName: req.ClassName,
		Language:  req.Language,
		Count:     req.Count,
	})
	if err != nil {
		return "", fmt.Errorf("practice problems: %w", err)
	}
	return out, nil
}

// Quiz generates a multiple-choice quiz.
func (c *Client) Quiz(ctx context.Context, req QuizRequest) (_ []QuizQuestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("quiz", start, err) }()

	quiz, err := c.generation.Quiz(ctx, generationuc.QuizInput{
		Topic:        req.Topic,
		ClassName:    req.ClassName,
		Language:     req.Language,
		NumQuestions: req.NumQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz: %w", err)
	}

	out := make([]QuizQuestion, len(quiz.Questions))
	for i, q := range quiz.Questions {
		out[i] = QuizQuestion{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	return out, nil
}

// VideoScript generates a timestamped narration script.
func (c *Client) VideoScript(ctx context.Context, req ScriptRequest) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("video_script", start, err) }()

	out, err := c.generation.VideoScript(ctx, generationuc.ScriptInput{
		Topic:           req.Topic,
		ClassName:       req.ClassName,
		Language:        req.Language,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return "", fmt.Errorf("video script: %w", err)
	}
	return out, nil
}
