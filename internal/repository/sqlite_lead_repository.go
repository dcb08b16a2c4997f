package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bktrade/site/internal/model"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    organization TEXT,
    phone TEXT,
    email TEXT,
    message TEXT,
    item TEXT,
    source TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

// sqliteColumns are added to requests when missing. Databases created by
// older deployments only have the columns of sqliteSchema.
var sqliteColumns = []struct {
	name string
	ddl  string
}{
	{"ip", `ALTER TABLE requests ADD COLUMN ip TEXT NOT NULL DEFAULT ''`},
	{"user_agent", `ALTER TABLE requests ADD COLUMN user_agent TEXT NOT NULL DEFAULT ''`},
	{"status", `ALTER TABLE requests ADD COLUMN status TEXT NOT NULL DEFAULT 'new'`},
	{"manager_note", `ALTER TABLE requests ADD COLUMN manager_note TEXT NOT NULL DEFAULT ''`},
}

// sqliteTimeLayout matches CURRENT_TIMESTAMP so old and new rows sort and
// read back the same way.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteLeadRepository is the SQLite implementation of LeadRepository.
type SQLiteLeadRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// Ensure SQLiteLeadRepository implements LeadRepository at compile time.
var _ LeadRepository = (*SQLiteLeadRepository)(nil)

// OpenSQLiteLeadRepository opens (creating if needed) the database file at
// path and brings the requests table up to date.
func OpenSQLiteLeadRepository(ctx context.Context, path string) (*SQLiteLeadRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	repo := &SQLiteLeadRepository{db: db, now: time.Now}
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

type sqliteColumnInfo struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull bool           `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

// migrate is additive and idempotent: it creates the table and adds any
// missing column, never dropping or rewriting existing data.
func (r *SQLiteLeadRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var cols []sqliteColumnInfo
	if err := r.db.SelectContext(ctx, &cols, `PRAGMA table_info(requests)`); err != nil {
		return fmt.Errorf("table info: %w", err)
	}
	existing := make(map[string]bool, len(cols))
	for _, c := range cols {
		existing[c.Name] = true
	}

	for _, c := range sqliteColumns {
		if existing[c.name] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", c.name, err)
		}
	}

	_, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)`)
	return err
}

// Ping checks the database handle.
func (r *SQLiteLeadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type sqliteLeadRow struct {
	ID           int64          `db:"id"`
	Name         sql.NullString `db:"name"`
	Organization sql.NullString `db:"organization"`
	Phone        sql.NullString `db:"phone"`
	Email        sql.NullString `db:"email"`
	Message      sql.NullString `db:"message"`
	Item         sql.NullString `db:"item"`
	Source       sql.NullString `db:"source"`
	IP           string         `db:"ip"`
	UserAgent    string         `db:"user_agent"`
	Status       string         `db:"status"`
	ManagerNote  string         `db:"manager_note"`
	CreatedAt    sql.NullString `db:"created_at"`
}

var sqliteTimeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (row *sqliteLeadRow) lead() *model.Lead {
	status := model.LeadStatus(row.Status)
	if !status.Valid() {
		// SQLite has no CHECK on status for tables created by old deployments.
		status = model.LeadStatusNew
	}
	return &model.Lead{
		ID:           row.ID,
		Name:         row.Name.String,
		Organization: row.Organization.String,
		Phone:        row.Phone.String,
		Email:        row.Email.String,
		Message:      row.Message.String,
		Item:         row.Item.String,
		Source:       row.Source.String,
		IP:           row.IP,
		UserAgent:    row.UserAgent,
		Status:       status,
		ManagerNote:  row.ManagerNote,
		CreatedAt:    parseSQLiteTime(row.CreatedAt.String),
	}
}

// Insert stores lead and fills in its id and creation time.
func (r *SQLiteLeadRepository) Insert(ctx context.Context, lead *model.Lead) error {
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	createdAt := r.now().UTC().Truncate(time.Second)

	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO requests (name, organization, phone, email, message, item, source, ip, user_agent, status, manager_note, created_at)
		 VALUES (:name, :organization, :phone, :email, :message, :item, :source, :ip, :user_agent, :status, :manager_note, :created_at)`,
		map[string]any{
			"name":         lead.Name,
			"organization": lead.Organization,
			"phone":        lead.Phone,
			"email":        lead.Email,
			"message":      lead.Message,
			"item":         lead.Item,
			"source":       lead.Source,
			"ip":           lead.IP,
			"user_agent":   lead.UserAgent,
			"status":       string(lead.Status),
			"manager_note": lead.ManagerNote,
			"created_at":   createdAt.Format(sqliteTimeLayout),
		})
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lead.ID = id
	lead.CreatedAt = createdAt
	return nil
}

// List returns up to limit leads ordered by id descending.
func (r *SQLiteLeadRepository) List(ctx context.Context, limit int) ([]*model.Lead, error) {
	var rows []sqliteLeadRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, organization, phone, email, message, item, source,
		        ip, user_agent, status, manager_note, created_at
		 FROM requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	leads := make([]*model.Lead, 0, len(rows))
	for i := range rows {
		leads = append(leads, rows[i].lead())
	}
	return leads, nil
}

// UpdateStatus sets status and manager_note in a single statement.
func (r *SQLiteLeadRepository) UpdateStatus(ctx context.Context, id int64, status model.LeadStatus, note string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE requests SET status = ?, manager_note = ? WHERE id = ?`,
		string(status), note, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the database handle.
func (r *SQLiteLeadRepository) Close() error {
	return r.db.Close()
}
