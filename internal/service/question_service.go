package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"triviamon/internal/cache"
	"triviamon/internal/model"
	"triviamon/internal/repository"
)

const questionFetchLimit = 50

// QuestionService picks trivia questions for battle turns. It filters the
// Mongo bank by grade level and skips ids any of the given players saw
// recently, tracked in Redis.
type QuestionService struct {
	questionRepo repository.QuestionRepo
	seenCache    cache.SeenCache
}

// NewQuestionService creates a new question service
func NewQuestionService(questionRepo repository.QuestionRepo, seenCache cache.SeenCache) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		seenCache:    seenCache,
	}
}

// NextQuestion returns a random question at or below gradeLevel that none
// of the players saw recently. Returns nil when the bank is exhausted for
// the filter.
func (s *QuestionService) NextQuestion(ctx context.Context, gradeLevel int, playerIDs []string, excludeIDs []string) (*model.Question, error) {
	exclude := append([]string(nil), excludeIDs...)
	for _, pid := range playerIDs {
		seen, err := s.seenCache.SeenIDs(ctx, pid)
		if err != nil {
			// seen-tracking is best effort; a cold cache just risks repeats
			log.Printf("question: seen lookup failed for %s: %v", pid, err)
			continue
		}
		exclude = append(exclude, seen...)
	}

	questions, err := s.questionRepo.FindByGrade(ctx, gradeLevel, exclude, questionFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil
	}
	return questions[rand.Intn(len(questions))], nil
}

// QuestionByID fetches a single question
func (s *QuestionService) QuestionByID(ctx context.Context, id string) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// MarkSeen records that the players were shown a question
func (s *QuestionService) MarkSeen(ctx context.Context, playerIDs []string, questionID string) error {
	for _, pid := range playerIDs {
		if err := s.seenCache.MarkSeen(ctx, pid, questionID); err != nil {
			return err
		}
	}
	return nil
}
