package repository

import (
	"context"

	"github.com/bktrade/site/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLeadRepository is the PostgreSQL implementation of LeadRepository.
// The requests table is created by cmd/migrate.
type PgLeadRepository struct {
	pool *pgxpool.Pool
}

// NewPgLeadRepository creates a PgLeadRepository backed by the given pool.
func NewPgLeadRepository(pool *pgxpool.Pool) *PgLeadRepository {
	return &PgLeadRepository{pool: pool}
}

// Ensure PgLeadRepository implements LeadRepository at compile time.
var _ LeadRepository = (*PgLeadRepository)(nil)

const leadSelectCols = `id, name, organization, phone, email, message, item, source,
	ip, user_agent, status, manager_note, created_at`

// Ping は DB 接続を確認する（DB インターフェース実装）
func (r *PgLeadRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Insert adds a requests row and populates lead.ID and lead.CreatedAt from
// the RETURNING clause.
func (r *PgLeadRepository) Insert(ctx context.Context, lead *model.Lead) error {
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO requests (name, organization, phone, email, message, item, source, ip, user_agent, status, manager_note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		lead.Name, lead.Organization, lead.Phone, lead.Email, lead.Message, lead.Item, lead.Source,
		lead.IP, lead.UserAgent, string(lead.Status), lead.ManagerNote,
	).Scan(&lead.ID, &lead.CreatedAt)
}

// List returns up to limit leads ordered by id descending.
func (r *PgLeadRepository) List(ctx context.Context, limit int) ([]*model.Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadSelectCols+` FROM requests ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func scanLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var status string
	if err := row.Scan(&l.ID, &l.Name, &l.Organization, &l.Phone, &l.Email, &l.Message, &l.Item, &l.Source,
		&l.IP, &l.UserAgent, &status, &l.ManagerNote, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Status = model.LeadStatus(status)
	return &l, nil
}

// UpdateStatus sets status and manager_note in a single statement.
func (r *PgLeadRepository) UpdateStatus(ctx context.Context, id int64, status model.LeadStatus, note string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET status = $1, manager_note = $2 WHERE id = $3`,
		string(status), note, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Close releases the pool.
func (r *PgLeadRepository) Close() error {
	r.pool.Close()
	return nil
}
