package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/todo-backend/services/todo/internal/apperr"
	"github.com/sun1tar/todo-backend/services/todo/internal/models"
	"github.com/sun1tar/todo-backend/services/todo/internal/repository"
	"github.com/sun1tar/todo-backend/shared/logger"
	"github.com/sun1tar/todo-backend/shared/middleware"
)

var (
	ErrPerformerNotFound = apperr.New(apperr.NotFound, "Performer not found")
	errPerformerExists   = apperr.New(apperr.BadRequest, "Performer already exists")
)

// PerformerInput поля исполнителя из запроса; nil означает "не передано"
type PerformerInput struct {
	ID         string
	FirstName  *string
	LastName   *string
	MiddleName *string
	BirthDate  *string
}

// PerformerService исполнители общие для всех пользователей, без проверки владельца
type PerformerService struct {
	performers repository.PerformerRepository
	logger     *logrus.Logger
}

func NewPerformerService(performers repository.PerformerRepository, l *logrus.Logger) *PerformerService {
	return &PerformerService{performers: performers, logger: l}
}

func (s *PerformerService) log(ctx context.Context) *logrus.Entry {
	return logger.WithRequestID(s.logger, middleware.GetRequestID(ctx)).WithField("component", "performer_service")
}

func (s *PerformerService) List(ctx context.Context) ([]*models.Performer, error) {
	performers, err := s.performers.ListPerformers(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while fetching performers", err)
	}
	return performers, nil
}

func (s *PerformerService) Get(ctx context.Context, id string) (*models.Performer, error) {
	p, err := s.performers.GetPerformer(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while fetching performer", err)
	}
	if p == nil {
		return nil, ErrPerformerNotFound
	}
	return p, nil
}

func (s *PerformerService) Create(ctx context.Context, in PerformerInput) (*models.Performer, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" || isBlank(in.FirstName) || isBlank(in.LastName) {
		return nil, apperr.New(apperr.BadRequest, "Performer id, first_name and last_name are required")
	}

	existing, err := s.performers.GetPerformer(ctx, in.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while creating performer", err)
	}
	if existing != nil {
		return nil, errPerformerExists
	}

	p := &models.Performer{
		ID:         in.ID,
		FirstName:  *in.FirstName,
		LastName:   *in.LastName,
		MiddleName: in.MiddleName,
		BirthDate:  in.BirthDate,
	}
	if err := s.performers.CreatePerformer(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errPerformerExists
		}
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while creating performer", err)
	}

	s.log(ctx).WithField("performer_id", p.ID).Info("performer created")
	return p, nil
}

// Update частичное обновление: непереданные поля сохраняют текущее значение
func (s *PerformerService) Update(ctx context.Context, id string, in PerformerInput) (*models.Performer, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if (in.FirstName != nil && isBlank(in.FirstName)) || (in.LastName != nil && isBlank(in.LastName)) {
		return nil, apperr.New(apperr.BadRequest, "Performer first_name and last_name cannot be empty")
	}

	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.MiddleName != nil {
		p.MiddleName = in.MiddleName
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}

	if err := s.performers.UpdatePerformer(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPerformerNotFound
		}
		return nil, apperr.Wrap(apperr.ServerError, "An error occurred while updating performer", err)
	}

	s.log(ctx).WithField("performer_id", id).Info("performer updated")
	return p, nil
}

func (s *PerformerService) Delete(ctx context.Context, id string) error {
	if err := s.performers.DeletePerformer(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPerformerNotFound
		}
		return apperr.Wrap(apperr.ServerError, "An error occurred while deleting performer", err)
	}

	s.log(ctx).WithField("performer_id", id).Info("performer deleted")
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
