package repository

import (
	"context"

	"github.com/bktrade/site/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// LeadRepository persists leads submitted through the site form.
// Leads are never deleted; only status and manager note change after insert.
type LeadRepository interface {
	DB

	// Insert stores lead and fills in lead.ID and lead.CreatedAt.
	Insert(ctx context.Context, lead *model.Lead) error

	// List returns at most limit leads, newest (highest id) first.
	List(ctx context.Context, limit int) ([]*model.Lead, error)

	// UpdateStatus overwrites status and manager note of the lead with the
	// given id. It reports false when no such lead exists.
	UpdateStatus(ctx context.Context, id int64, status model.LeadStatus, note string) (bool, error)

	Close() error
}
