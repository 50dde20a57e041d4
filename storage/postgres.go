package storage

import (
	"database/sql"
	"fmt"

	"github.com/7mcool/Vortex-Automator/model"
	_ "github.com/lib/pq"
)

type Postgres struct {
	db *sql.DB
}

var pgMigration = []string{
	`CREATE TABLE publication (
id uuid PRIMARY KEY,
channel_id VARCHAR(255) NOT NULL,
video_file VARCHAR(255) NOT NULL,
remote_id VARCHAR(255) NOT NULL,
publish_at TIMESTAMPTZ NOT NULL,
uploaded_at TIMESTAMPTZ NOT NULL
)`,
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return nil, err
	}

	return p, nil
}

// Record inserts one publication row.
func (p *Postgres) Record(pub model.Publication) error {
	_, err := p.db.Exec(`
INSERT INTO publication
(id, channel_id, video_file, remote_id, publish_at, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, pub.ID, pub.ChannelID, pub.VideoFile, pub.RemoteID, pub.PublishAt, pub.UploadedAt)
	if err != nil {
		return fmt.Errorf("record publication: %w", err)
	}

	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	if _, err := p.db.Exec(query); err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}
