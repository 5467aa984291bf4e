package source

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bascanada/proposalviewer/pkg/log"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

//go:embed migrations
var migrations embed.FS

// Dialect selects the SQL driver and migration set.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) migrationsDir() string {
	if d == DialectPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// SQLSource reads documents from the tables created by its migrations.
// Placeholders are written $n, which both drivers accept.
type SQLSource struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
}

// OpenSQL connects to dsn and, when migrate is set, applies pending migrations.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, migrate bool) (*SQLSource, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}

	s := &SQLSource{db: db, dialect: dialect, dsn: dsn}
	if migrate {
		if _, err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

// newMigrate builds a migrator on its own connection, since closing the
// migrator closes the database it was given.
func (s *SQLSource) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, s.dialect.migrationsDir())
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	db, err := sql.Open(string(s.dialect), s.dsn)
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch s.dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, string(s.dialect), driver)
}

// Migrate applies pending migrations and returns the resulting schema version.
func (s *SQLSource) Migrate(ctx context.Context) (uint, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("running migrations: %w", err)
	} else if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("schema of %s database is up to date", s.dialect)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return version, nil
}

// Version reports the applied schema version and whether the last migration
// failed half way.
func (s *SQLSource) Version() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *SQLSource) ListDocuments(ctx context.Context) ([]proposal.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, d.title,
			(SELECT COUNT(*) FROM tabs t WHERE t.document_name = d.name),
			(SELECT COUNT(*) FROM projects p WHERE p.document_name = d.name),
			(SELECT COUNT(*) FROM team_members m WHERE m.document_name = d.name)
		FROM documents d
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []proposal.DocumentSummary{}
	for rows.Next() {
		var sum proposal.DocumentSummary
		if err := rows.Scan(&sum.Name, &sum.Title, &sum.Tabs, &sum.Projects, &sum.TeamMembers); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return summaries, nil
}

func (s *SQLSource) GetDocument(ctx context.Context, name string) (*proposal.Document, error) {
	var (
		doc   proposal.Document
		theme string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, title, theme FROM documents WHERE name = $1
	`, name).Scan(&doc.Name, &doc.Title, &theme)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if theme != "" {
		if err := json.Unmarshal([]byte(theme), &doc.Theme); err != nil {
			return nil, fmt.Errorf("decoding theme of %s: %w", name, err)
		}
	}

	if doc.Tabs, err = s.tabs(ctx, name); err != nil {
		return nil, err
	}
	if doc.Projects, err = s.projects(ctx, name); err != nil {
		return nil, err
	}
	if doc.Team, err = s.team(ctx, name); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLSource) tabs(ctx context.Context, name string) ([]proposal.Tab, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, kind, content FROM tabs
		WHERE document_name = $1 ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	var tabs []proposal.Tab
	for rows.Next() {
		var t proposal.Tab
		if err := rows.Scan(&t.ID, &t.Title, &t.Kind, &t.Content); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, t)
	}
	return tabs, rows.Err()
}

func (s *SQLSource) projects(ctx context.Context, name string) ([]proposal.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, entity, client, location, country, value, year,
			services, description, latitude, longitude, image_url
		FROM projects
		WHERE document_name = $1 ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []proposal.Project
	for rows.Next() {
		var (
			p        proposal.Project
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Entity, &p.Client, &p.Location, &p.Country,
			&p.Value, &p.Year, &p.Services, &p.Description, &lat, &lng, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if lat.Valid {
			p.Latitude = &lat.Float64
		}
		if lng.Valid {
			p.Longitude = &lng.Float64
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLSource) team(ctx context.Context, name string) ([]proposal.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, title, bio, key_skills, years_experience, email, image_url, sort_order
		FROM team_members
		WHERE document_name = $1 ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var team []proposal.TeamMember
	for rows.Next() {
		var m proposal.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Title, &m.Bio, &m.KeySkills,
			&m.YearsExperience, &m.Email, &m.ImageURL, &m.Order); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		team = append(team, m)
	}
	return team, rows.Err()
}

// Import replaces the stored copy of doc in a single transaction.
func (s *SQLSource) Import(ctx context.Context, doc *proposal.Document) error {
	theme, err := json.Marshal(doc.Theme)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"tabs", "projects", "team_members"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE document_name = $1`, doc.Name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE name = $1`, doc.Name); err != nil {
		return fmt.Errorf("failed to clear document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (name, title, theme) VALUES ($1, $2, $3)
	`, doc.Name, doc.Title, string(theme)); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for i, t := range doc.Tabs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tabs (document_name, position, id, title, kind, content)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, doc.Name, i, t.ID, t.Title, string(t.Kind), t.Content); err != nil {
			return fmt.Errorf("failed to insert tab: %w", err)
		}
	}

	for i, p := range doc.Projects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (document_name, position, id, name, entity, client, location,
				country, value, year, services, description, latitude, longitude, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, doc.Name, i, p.ID, p.Name, p.Entity, p.Client, p.Location, p.Country, p.Value, p.Year,
			p.Services, p.Description, nullFloat(p.Latitude), nullFloat(p.Longitude), p.ImageURL); err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
	}

	for i, m := range doc.Team {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (document_name, position, id, name, title, bio, key_skills,
				years_experience, email, image_url, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, doc.Name, i, m.ID, m.Name, m.Title, m.Bio, m.KeySkills, m.YearsExperience,
			m.Email, m.ImageURL, m.Order); err != nil {
			return fmt.Errorf("failed to insert team member: %w", err)
		}
	}

	return tx.Commit()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
