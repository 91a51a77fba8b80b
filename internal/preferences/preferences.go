// Package preferences remembers the last selected academic year and, per
// year, the last selected semester.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kabinet-assist/internal/components/assert"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/db"
	"kabinet-assist/internal/scrapers/kabinet"
)

const (
	report_db_query = "db.query"
)

const (
	keySavedYear           = "savedEduYear"
	keySavedSemesterPrefix = "savedEduSemester-"
)

func semesterKey(year string) string {
	return keySavedSemesterPrefix + year
}

// Store is a key-value store of the user's selections.
type Store struct {
	db     *db.Queries
	makeTx db.MakeTx
	time   chrono.API
	tel    telemetry.API
}

type storeCfg struct {
	tel telemetry.API
}

type StoreOption func(cfg *storeCfg)

func WithCustomTelemetryAPI(tel telemetry.API) StoreOption {
	return func(cfg *storeCfg) {
		cfg.tel = tel
	}
}

// NewStore migrates `conn` and returns a Store over it.
func NewStore(ctx context.Context, conn *sql.DB, time chrono.API, opts ...StoreOption) (Store, error) {
	assert.NotNil(conn, "conn")
	assert.NotNil(time, "time")

	var cfg storeCfg
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("preferences", cfg.tel)

	err := db.Migrate(ctx, conn)
	if err != nil {
		tel.ReportBroken(report_db_query, err, "Migrate")
		return Store{}, fmt.Errorf("migrate preferences: %w", err)
	}

	return Store{
		db:     db.New(conn),
		makeTx: db.NewMakeTx(conn),
		time:   time,
		tel:    tel,
	}, nil
}

func (s Store) get(ctx context.Context, key string) (string, bool, error) {
	pref, err := s.db.GetPreference(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetPreference", key)
		return "", false, err
	}
	return pref.Value, true, nil
}

func (s Store) set(ctx context.Context, q *db.Queries, key, value string) error {
	err := q.SetPreference(ctx, db.SetPreferenceParams{
		Key:       key,
		Value:     value,
		UpdatedAt: s.time.Now().Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "SetPreference", key)
	}
	return err
}

func (s Store) SavedYear(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keySavedYear)
}

func (s Store) SaveYear(ctx context.Context, year string) error {
	return s.set(ctx, s.db, keySavedYear, year)
}

func (s Store) SavedSemester(ctx context.Context, year string) (string, bool, error) {
	return s.get(ctx, semesterKey(year))
}

func (s Store) SaveSemester(ctx context.Context, year, semester string) error {
	return s.set(ctx, s.db, semesterKey(year), semester)
}

// ForgetSemester removes the saved semester of a year.
func (s Store) ForgetSemester(ctx context.Context, year string) error {
	err := s.db.DeletePreference(ctx, semesterKey(year))
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeletePreference", year)
	}
	return err
}

// SaveSelection saves both the year and its semester at once.
func (s Store) SaveSelection(ctx context.Context, year, semester string) error {
	tx, discard, commit, err := s.makeTx()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	err = s.set(ctx, tx, keySavedYear, year)
	if err != nil {
		return err
	}
	err = s.set(ctx, tx, semesterKey(year), semester)
	if err != nil {
		return err
	}
	return commit()
}

func offered(options []kabinet.Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// ChooseYear returns the saved year if it is still offered, otherwise the
// first offered year, which then becomes the saved one. it returns false
// when no year is offered.
func (s Store) ChooseYear(ctx context.Context, years []kabinet.Option) (string, bool, error) {
	saved, ok, err := s.SavedYear(ctx)
	if err != nil {
		return "", false, err
	}
	if ok && offered(years, saved) {
		return saved, true, nil
	}
	if len(years) == 0 {
		return "", false, nil
	}
	err = s.SaveYear(ctx, years[0].Value)
	if err != nil {
		return "", false, err
	}
	return years[0].Value, true, nil
}

// ChooseSemester returns the saved semester of `year` if it is still offered.
func (s Store) ChooseSemester(ctx context.Context, year string, semesters []kabinet.Option) (string, bool, error) {
	saved, ok, err := s.SavedSemester(ctx, year)
	if err != nil {
		return "", false, err
	}
	if ok && offered(semesters, saved) {
		return saved, true, nil
	}
	return "", false, nil
}
