package service

import (
	"context"
	"log/slog"

	"github.com/bktrade/site/internal/model"
	"github.com/bktrade/site/internal/repository"
	"github.com/bktrade/site/internal/throttle"
	"github.com/go-playground/validator/v10"
)

// DefaultListMax is the upper bound for List when none is configured.
const DefaultListMax = 500

// leadServiceImpl is the production implementation of LeadService.
type leadServiceImpl struct {
	repo     repository.LeadRepository
	throttle throttle.Throttle
	notifier LeadNotifier
	listMax  int
	validate *validator.Validate
}

// NewLeadService creates a LeadService. notifier may be nil.
func NewLeadService(repo repository.LeadRepository, th throttle.Throttle, notifier LeadNotifier, listMax int) LeadService {
	if listMax < 1 {
		listMax = DefaultListMax
	}
	return &leadServiceImpl{
		repo:     repo,
		throttle: th,
		notifier: notifier,
		listMax:  listMax,
		validate: newValidator(),
	}
}

func (s *leadServiceImpl) Submit(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
	if sub.Website != "" {
		slog.Info("lead rejected by honeypot", "ip", sub.IP)
		return nil, ErrSpam
	}

	lead := sanitizeSubmission(sub)
	in := leadInput{
		Name:    lead.Name,
		Phone:   lead.Phone,
		Email:   lead.Email,
		Message: lead.Message,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, firstValidationError(err, leadFieldMessages)
	}

	allowed, err := s.throttle.Allow(ctx, sub.IP)
	if err != nil {
		// Shared throttle unavailable: accept rather than lose the lead.
		slog.Warn("submit throttle unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	if err := s.repo.Insert(ctx, lead); err != nil {
		return nil, err
	}
	slog.Info("lead stored", "id", lead.ID, "source", lead.Source)

	if s.notifier != nil {
		s.notifier.NotifyLead(lead)
	}
	return lead, nil
}

func (s *leadServiceImpl) List(ctx context.Context, limit int) ([]*model.Lead, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > s.listMax {
		limit = s.listMax
	}
	leads, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []*model.Lead{}
	}
	return leads, nil
}

func (s *leadServiceImpl) UpdateStatus(ctx context.Context, id int64, status, note string) error {
	if err := s.validate.Struct(statusInput{ID: id, Status: status}); err != nil {
		return firstValidationError(err, statusFieldMessages)
	}
	note = sanitize(note, maxNoteLength, true)

	ok, err := s.repo.UpdateStatus(ctx, id, model.LeadStatus(status), note)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLeadNotFound
	}
	return nil
}
