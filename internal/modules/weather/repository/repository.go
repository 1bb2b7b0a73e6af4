package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"weatherdash/internal/modules/weather/types"
)

//go:embed sql/get-preferences.sql
var getPreferencesSQL string

//go:embed sql/upsert-preferences.sql
var upsertPreferencesSQL string

// PreferencesRepository persists the language and unit flags per session.
// Missing or unrecognised stored values read back as the defaults.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context, sessionID string) (types.Preferences, error)
	SavePreferences(ctx context.Context, sessionID string, prefs types.Preferences) error
	Ping(ctx context.Context) error
}

type repositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) PreferencesRepository {
	return &repositoryImpl{db: db, now: time.Now}
}

func (r *repositoryImpl) GetPreferences(ctx context.Context, sessionID string) (types.Preferences, error) {
	var lang, unit string
	err := r.db.QueryRowContext(ctx, getPreferencesSQL, sessionID).Scan(&lang, &unit)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DefaultPreferences(), nil
	}
	if err != nil {
		return types.Preferences{}, fmt.Errorf("get preferences %q: %w", sessionID, err)
	}
	return normalize(lang, unit), nil
}

func (r *repositoryImpl) SavePreferences(ctx context.Context, sessionID string, prefs types.Preferences) error {
	ts := r.now().UTC().Format(time.RFC3339Nano)
	_, err := r.db.ExecContext(ctx, upsertPreferencesSQL, sessionID, string(prefs.Language), string(prefs.Unit), ts)
	if err != nil {
		return fmt.Errorf("save preferences %q: %w", sessionID, err)
	}
	return nil
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func normalize(lang, unit string) types.Preferences {
	l, _ := types.ParseLanguage(lang)
	u, _ := types.ParseUnit(unit)
	return types.Preferences{Language: l, Unit: u}
}
