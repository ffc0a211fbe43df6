// source: query.sql

package db

import (
	"context"
	"database/sql"
)

const createCutoff = `-- name: CreateCutoff :exec
insert into cutoff (
    school, year, track,
    main_score, main_grade, affiliated_score, affiliated_grade,
    encoding, degraded
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateCutoffParams struct {
	School          string
	Year            int64
	Track           string
	MainScore       string
	MainGrade       string
	AffiliatedScore string
	AffiliatedGrade string
	Encoding        string
	Degraded        bool
}

func (q *Queries) CreateCutoff(ctx context.Context, arg CreateCutoffParams) error {
	_, err := q.db.ExecContext(ctx, createCutoff,
		arg.School,
		arg.Year,
		arg.Track,
		arg.MainScore,
		arg.MainGrade,
		arg.AffiliatedScore,
		arg.AffiliatedGrade,
		arg.Encoding,
		arg.Degraded,
	)
	return err
}

const deleteCutoffs = `-- name: DeleteCutoffs :exec
delete from cutoff where school = $1
`

func (q *Queries) DeleteCutoffs(ctx context.Context, school string) error {
	_, err := q.db.ExecContext(ctx, deleteCutoffs, school)
	return err
}

const listCutoffs = `-- name: ListCutoffs :many
select school, year, track, main_score, main_grade, affiliated_score, affiliated_grade, encoding, degraded from cutoff order by school, year desc, track
`

func (q *Queries) ListCutoffs(ctx context.Context) ([]Cutoff, error) {
	rows, err := q.db.QueryContext(ctx, listCutoffs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Cutoff
	for rows.Next() {
		var i Cutoff
		if err := rows.Scan(
			&i.School,
			&i.Year,
			&i.Track,
			&i.MainScore,
			&i.MainGrade,
			&i.AffiliatedScore,
			&i.AffiliatedGrade,
			&i.Encoding,
			&i.Degraded,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listSchoolNames = `-- name: ListSchoolNames :many
select name from school order by name
`

func (q *Queries) ListSchoolNames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listSchoolNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listSchools = `-- name: ListSchools :many
select name, detail_url, town, address, scraped_at, latitude, longitude, higher_chinese, higher_tamil, higher_malay from school order by name
`

func (q *Queries) ListSchools(ctx context.Context) ([]School, error) {
	rows, err := q.db.QueryContext(ctx, listSchools)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []School
	for rows.Next() {
		var i School
		if err := rows.Scan(
			&i.Name,
			&i.DetailUrl,
			&i.Town,
			&i.Address,
			&i.ScrapedAt,
			&i.Latitude,
			&i.Longitude,
			&i.HigherChinese,
			&i.HigherTamil,
			&i.HigherMalay,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSchool = `-- name: UpsertSchool :exec
insert into school (
    name, detail_url, town, address, scraped_at,
    latitude, longitude, higher_chinese, higher_tamil, higher_malay
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
on conflict (name) do update set
    detail_url = excluded.detail_url,
    town = excluded.town,
    address = excluded.address,
    scraped_at = excluded.scraped_at,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    higher_chinese = excluded.higher_chinese,
    higher_tamil = excluded.higher_tamil,
    higher_malay = excluded.higher_malay
`

type UpsertSchoolParams struct {
	Name          string
	DetailUrl     string
	Town          string
	Address       string
	ScrapedAt     string
	Latitude      sql.NullFloat64
	Longitude     sql.NullFloat64
	HigherChinese sql.NullBool
	HigherTamil   sql.NullBool
	HigherMalay   sql.NullBool
}

func (q *Queries) UpsertSchool(ctx context.Context, arg UpsertSchoolParams) error {
	_, err := q.db.ExecContext(ctx, upsertSchool,
		arg.Name,
		arg.DetailUrl,
		arg.Town,
		arg.Address,
		arg.ScrapedAt,
		arg.Latitude,
		arg.Longitude,
		arg.HigherChinese,
		arg.HigherTamil,
		arg.HigherMalay,
	)
	return err
}
