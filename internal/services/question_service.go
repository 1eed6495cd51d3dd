package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/cache"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/campus-stack/testing-service/internal/validator"
)

// QuestionService manages the versioned question store. Question content
// is immutable per version; every edit appends the next version and moves
// the latest pointer.
type QuestionService interface {
	Create(ctx context.Context, actor authz.Actor, req *QuestionContentRequest) (*QuestionResponse, error)
	Revise(ctx context.Context, actor authz.Actor, questionID uint, req *QuestionContentRequest) (*QuestionResponse, error)
	// Get returns the requested version, or the latest when version is nil.
	Get(ctx context.Context, actor authz.Actor, questionID uint, version *int) (*QuestionResponse, error)
	List(ctx context.Context, actor authz.Actor, filters repositories.QuestionFilters) ([]repositories.QuestionListRow, error)
	Delete(ctx context.Context, actor authz.Actor, questionID uint) error
}

type QuestionContentRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Body         string   `json:"body" validate:"max=10000"`
	Options      []string `json:"options" validate:"required"`
	CorrectIndex int      `json:"correct_index"`
}

type QuestionResponse struct {
	ID       uint     `json:"id"`
	AuthorID uint     `json:"author_id"`
	Version  int      `json:"version"`
	IsLatest bool     `json:"is_latest"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Options  []string `json:"options"`
	// CorrectIndex is withheld from readers who only see the question
	// through one of their attempts.
	CorrectIndex *int `json:"correct_index,omitempty"`
}

type questionService struct {
	repo      repositories.Repository
	engine    *authz.Engine
	validator *validator.Validator
	versions  *cache.VersionCache
	logger    *slog.Logger
}

func NewQuestionService(repo repositories.Repository, engine *authz.Engine, v *validator.Validator, versions *cache.VersionCache, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		engine:    engine,
		validator: v,
		versions:  versions,
		logger:    logger,
	}
}

func (s *questionService) Create(ctx context.Context, actor authz.Actor, req *QuestionContentRequest) (*QuestionResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionQuestionCreate, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, 0, "question", "create", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validateContent(req); err != nil {
		return nil, err
	}

	question := &models.Question{AuthorID: actor.UserID}
	version := &models.QuestionVersion{
		Title:        req.Title,
		Body:         req.Body,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
	}
	if err := s.repo.Question().Create(ctx, question, version); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"author_id", actor.UserID)

	s.versions.Put(ctx, version)
	return s.response(question, version, true, true), nil
}

func (s *questionService) Revise(ctx context.Context, actor authz.Actor, questionID uint, req *QuestionContentRequest) (*QuestionResponse, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionQuestionRevise, authz.Ownership{OwnerID: question.AuthorID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, questionID, "question", "revise", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validateContent(req); err != nil {
		return nil, err
	}

	version := &models.QuestionVersion{
		Title:        req.Title,
		Body:         req.Body,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
	}
	assigned, err := s.repo.Question().CreateVersion(ctx, questionID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create question version: %w", err)
	}

	s.logger.Info("Question revised",
		"question_id", questionID,
		"version", assigned,
		"author_id", actor.UserID)

	s.versions.Put(ctx, version)
	question.LatestVersion = assigned
	return s.response(question, version, true, true), nil
}

func (s *questionService) Get(ctx context.Context, actor authz.Actor, questionID uint, version *int) (*QuestionResponse, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	target := question.LatestVersion
	if version != nil {
		target = *version
	}

	decision := s.engine.Authorize(actor, authz.ActionQuestionGet, authz.Ownership{OwnerID: question.AuthorID})
	if decision.Allowed {
		v, err := s.loadVersion(ctx, questionID, target)
		if err != nil {
			return nil, err
		}
		return s.response(question, v, target == question.LatestVersion, true), nil
	}

	// A student may read exactly the versions pinned into their own
	// attempts, without the answer key.
	pinned, err := s.repo.Question().HasPinnedAttempt(ctx, actor.UserID, questionID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to check pinned attempts: %w", err)
	}
	if !pinned {
		return nil, NewPermissionError(actor.UserID, questionID, "question", "get", decision.RequiredPermission, decision.Reason)
	}

	v, err := s.loadVersion(ctx, questionID, target)
	if err != nil {
		return nil, err
	}
	return s.response(question, v, target == question.LatestVersion, false), nil
}

func (s *questionService) List(ctx context.Context, actor authz.Actor, filters repositories.QuestionFilters) ([]repositories.QuestionListRow, error) {
	if decision := s.engine.Authorize(actor, authz.ActionQuestionList, authz.Ownership{OwnerID: actor.UserID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, 0, "question", "list", decision.RequiredPermission, decision.Reason)
	}
	if !actor.Permissions.Has(authz.PermQuestListRead) {
		// Without the catalogue permission the list is scoped to own questions.
		own := actor.UserID
		filters.AuthorID = &own
	}

	rows, err := s.repo.Question().ListWithLatest(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return rows, nil
}

func (s *questionService) Delete(ctx context.Context, actor authz.Actor, questionID uint) error {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionQuestionDelete, authz.Ownership{OwnerID: question.AuthorID}); !decision.Allowed {
		return NewPermissionError(actor.UserID, questionID, "question", "delete", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Question().SoftDelete(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", questionID, "user_id", actor.UserID)
	return nil
}

// ===== HELPERS =====

func (s *questionService) getQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) loadVersion(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, error) {
	if v, ok := s.versions.Get(ctx, questionID, version); ok {
		return v, nil
	}

	v, err := s.repo.Question().GetVersion(ctx, questionID, version)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionVersionMissing
		}
		return nil, fmt.Errorf("failed to get question version: %w", err)
	}
	s.versions.Put(ctx, v)
	return v, nil
}

func (s *questionService) validateContent(req *QuestionContentRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if errs := s.validator.ValidateQuestionContent(req.Options, req.CorrectIndex); len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *questionService) response(q *models.Question, v *models.QuestionVersion, isLatest, withAnswer bool) *QuestionResponse {
	resp := &QuestionResponse{
		ID:       q.ID,
		AuthorID: q.AuthorID,
		Version:  v.Version,
		IsLatest: isLatest,
		Title:    v.Title,
		Body:     v.Body,
		Options:  v.Options,
	}
	if withAnswer {
		correct := v.CorrectIndex
		resp.CorrectIndex = &correct
	}
	return resp
}
