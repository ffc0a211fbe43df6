package db

import (
	"database/sql"
)

type School struct {
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

type Cutoff struct {
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
