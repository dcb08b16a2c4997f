package service

import (
	"context"

	"github.com/bktrade/site/internal/model"
)

// LeadService defines the business logic for leads submitted through the site.
type LeadService interface {
	// Submit checks, sanitizes, throttles and stores a submission. It returns
	// ErrSpam, *ValidationError or ErrRateLimited for rejected input.
	Submit(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error)

	// List returns the most recent leads, newest first. limit is clamped to
	// the configured range.
	List(ctx context.Context, limit int) ([]*model.Lead, error)

	// UpdateStatus sets the status and manager note of a lead. It returns
	// ErrLeadNotFound when the lead does not exist.
	UpdateStatus(ctx context.Context, id int64, status, note string) error
}

// LeadNotifier is told about every stored lead. Implementations must not block.
type LeadNotifier interface {
	NotifyLead(lead *model.Lead)
}
