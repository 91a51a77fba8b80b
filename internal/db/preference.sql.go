package db

import (
	"context"
)

type Preference struct {
	Key       string
	Value     string
	UpdatedAt int64
}

const getPreference = `-- name: GetPreference :one
select key, value, updated_at from preference
where key = ?
`

func (q *Queries) GetPreference(ctx context.Context, key string) (Preference, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var i Preference
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const setPreference = `-- name: SetPreference :exec
insert into preference (key, value, updated_at) values (?, ?, ?)
on conflict (key) do update set
    value = excluded.value,
    updated_at = excluded.updated_at
`

type SetPreferenceParams struct {
	Key       string
	Value     string
	UpdatedAt int64
}

func (q *Queries) SetPreference(ctx context.Context, arg SetPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, setPreference, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const deletePreference = `-- name: DeletePreference :exec
delete from preference
where key = ?
`

func (q *Queries) DeletePreference(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deletePreference, key)
	return err
}
