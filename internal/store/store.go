package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schoolcutoffs/internal/cutoff"
	"schoolcutoffs/internal/db"
	"schoolcutoffs/internal/school"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects the database, a local sqlite file when Url is empty,
// otherwise postgres:// urls go to PostgreSQL and anything else to libsql.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) Configured() bool {
	return c.File != "" || c.Url != ""
}

func isPostgres(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func (c Config) OpenDB() (*sql.DB, error) {
	if c.Url == "" {
		if c.File == "" {
			return nil, fmt.Errorf("neither a database file nor url was specified")
		}
		if c.File != ":memory:" {
			err := os.MkdirAll(filepath.Dir(c.File), 0777)
			if err != nil {
				return nil, wrapOpenDB(err)
			}
		}
		database, err := sql.Open("sqlite", c.File)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		// :memory: databases only live as long as their connection
		database.SetMaxOpenConns(1)
		if c.File != ":memory:" {
			_, err = database.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				database.Close()
				return nil, wrapOpenDB(err)
			}
		}
		return database, nil
	}

	if isPostgres(c.Url) {
		return sql.Open("pgx", c.Url)
	}

	values := url.Values{}
	if c.AuthToken != "" {
		values.Add("authToken", c.AuthToken)
	}
	return sql.Open("libsql", c.Url+"?"+values.Encode())
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
}

// NewStore applies the schema to the database if needed.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}, nil
}

// Open opens the configured database and prepares a Store over it.
func Open(ctx context.Context, config Config) (Store, error) {
	database, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	s, err := NewStore(ctx, database)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return s, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func nullFloat(f float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: valid}
}

func nullBool(b bool, valid bool) sql.NullBool {
	return sql.NullBool{Bool: b, Valid: valid}
}

func schoolParams(r *school.Record) db.UpsertSchoolParams {
	params := db.UpsertSchoolParams{
		Name:      r.Name,
		DetailUrl: r.DetailURL,
		Town:      r.Town,
		Address:   r.Address,
		ScrapedAt: r.ScrapedAt.Format(time.RFC3339Nano),
	}
	if r.Coordinates != nil {
		params.Latitude = nullFloat(r.Coordinates.Latitude, true)
		params.Longitude = nullFloat(r.Coordinates.Longitude, true)
	}
	if r.Languages != nil {
		params.HigherChinese = nullBool(r.Languages.Chinese, true)
		params.HigherTamil = nullBool(r.Languages.Tamil, true)
		params.HigherMalay = nullBool(r.Languages.Malay, true)
	}
	return params
}

// Push upserts every record and replaces its cut-offs, all in one transaction.
func (s Store) Push(ctx context.Context, records []*school.Record) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return fmt.Errorf("make tx: %w", err)
	}
	defer discard()

	for _, r := range records {
		err = tx.UpsertSchool(ctx, schoolParams(r))
		if err != nil {
			return fmt.Errorf("upsert %s: %w", r.Name, err)
		}
		err = tx.DeleteCutoffs(ctx, r.Name)
		if err != nil {
			return fmt.Errorf("delete cutoffs of %s: %w", r.Name, err)
		}
		for key, c := range r.Cutoffs {
			err = tx.CreateCutoff(ctx, db.CreateCutoffParams{
				School:          r.Name,
				Year:            int64(key.Year),
				Track:           string(key.Track),
				MainScore:       c.Main.Score,
				MainGrade:       c.Main.Grade.String(),
				AffiliatedScore: c.Affiliated.Score,
				AffiliatedGrade: c.Affiliated.Grade.String(),
				Encoding:        c.Encoding.String(),
				Degraded:        c.Degraded,
			})
			if err != nil {
				return fmt.Errorf("create cutoff %s %d %s: %w", r.Name, key.Year, key.Track, err)
			}
		}
	}
	return commit()
}

func recordFromRow(row db.School) (*school.Record, error) {
	scrapedAt, err := time.Parse(time.RFC3339Nano, row.ScrapedAt)
	if err != nil {
		return nil, fmt.Errorf("parse scrape time of %s: %w", row.Name, err)
	}
	r := school.NewRecord(row.Name, row.DetailUrl, scrapedAt)
	r.Town = row.Town
	r.Address = row.Address
	if row.Latitude.Valid && row.Longitude.Valid {
		r.Coordinates = &school.Coordinates{
			Latitude:  row.Latitude.Float64,
			Longitude: row.Longitude.Float64,
		}
	}
	if row.HigherChinese.Valid || row.HigherTamil.Valid || row.HigherMalay.Valid {
		r.Languages = &school.Languages{
			Chinese: row.HigherChinese.Bool,
			Tamil:   row.HigherTamil.Bool,
			Malay:   row.HigherMalay.Bool,
		}
	}
	return r, nil
}

// Pull reads every stored record back, ordered by name.
func (s Store) Pull(ctx context.Context) ([]*school.Record, error) {
	schools, err := s.qry.ListSchools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	cutoffs, err := s.qry.ListCutoffs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cutoffs: %w", err)
	}

	records := make([]*school.Record, 0, len(schools))
	byName := map[string]*school.Record{}
	for _, row := range schools {
		r, err := recordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		byName[r.Name] = r
	}

	for _, row := range cutoffs {
		r, ok := byName[row.School]
		if !ok {
			continue
		}
		track, ok := school.ParseTrack(row.Track)
		if !ok {
			return nil, fmt.Errorf("unknown track %q stored for %s", row.Track, row.School)
		}
		r.Set(int(row.Year), track, cutoff.Cutoff{
			Main:       cutoff.NewValue(row.MainScore, cutoff.ParseGrade(row.MainGrade)),
			Affiliated: cutoff.NewValue(row.AffiliatedScore, cutoff.ParseGrade(row.AffiliatedGrade)),
			Encoding:   cutoff.ParseEncoding(row.Encoding),
			Degraded:   row.Degraded,
		})
	}
	return records, nil
}

// Names returns the names of every stored school.
func (s Store) Names(ctx context.Context) ([]string, error) {
	return s.qry.ListSchoolNames(ctx)
}
