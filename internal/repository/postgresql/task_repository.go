package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docgen-worker-service/internal/entity"
)

var ErrNotFound = errors.New("not found")

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, ownerChatID int64, kind entity.TaskKind, params json.RawMessage, amountCharged int64) (uuid.UUID, error) {
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	const q = `
INSERT INTO tasks (uuid, owner_chat_id, kind, status, progress, params, amount_charged)
VALUES ($1, $2, $3, 'pending', 0, $4, $5)
RETURNING uuid;
`
	id := uuid.New()
	if err := r.pool.QueryRow(ctx, q, id, ownerChatID, string(kind), params, amountCharged).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

const taskColumns = `
id, uuid, owner_chat_id, kind, status, progress, params, amount_charged,
result_path, error_detail, created_at, started_at, completed_at
`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var (
		t          entity.Task
		kindText   string
		statusText string
		params     []byte
	)
	if err := row.Scan(
		&t.ID,
		&t.UUID,
		&t.OwnerChatID,
		&kindText,
		&statusText,
		&t.Progress,
		&params,
		&t.AmountCharged,
		&t.ResultPath,  // NULL => nil
		&t.ErrorDetail, // NULL => nil
		&t.CreatedAt,
		&t.StartedAt,
		&t.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Kind = entity.TaskKind(kindText)
	t.Status = entity.TaskStatus(statusText)
	t.Params = json.RawMessage(params)
	return &t, nil
}

func (r *TaskRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE uuid = $1;`
	return scanTask(r.pool.QueryRow(ctx, q, id))
}

func (r *TaskRepository) ListPending(ctx context.Context) ([]entity.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE status = 'pending' ORDER BY created_at;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// MarkProcessing moves a task into processing and stamps started_at on the
// first pickup only.
func (r *TaskRepository) MarkProcessing(ctx context.Context, id uuid.UUID, progress int) error {
	const q = `
UPDATE tasks
SET status='processing', progress=$2, started_at=COALESCE(started_at, now())
WHERE uuid=$1;
`
	tag, err := r.pool.Exec(ctx, q, id, progress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProgress only ever moves progress forward; a stale writer cannot pull
// the reported value backwards.
func (r *TaskRepository) SetProgress(ctx context.Context, id uuid.UUID, progress int) error {
	const q = `UPDATE tasks SET progress=GREATEST(progress, $2) WHERE uuid=$1;`

	tag, err := r.pool.Exec(ctx, q, id, progress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) MarkCompleted(ctx context.Context, id uuid.UUID, resultPath string) error {
	const q = `
UPDATE tasks
SET status='completed', progress=100, result_path=$2, completed_at=now()
WHERE uuid=$1;
`
	tag, err := r.pool.Exec(ctx, q, id, resultPath)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed transitions a non-terminal task to failed and reports whether
// this call performed the transition. Terminal rows stay untouched, which
// makes the failed transition safe to replay.
func (r *TaskRepository) MarkFailed(ctx context.Context, id uuid.UUID, errDetail string) (bool, error) {
	const q = `
UPDATE tasks
SET status='failed', error_detail=$2, completed_at=now()
WHERE uuid=$1 AND status IN ('pending', 'processing');
`
	tag, err := r.pool.Exec(ctx, q, id, errDetail)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
