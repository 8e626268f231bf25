package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/sun1tar/todo-backend/services/todo/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// queryer общий интерфейс *sql.DB и *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore хранилище поверх database/sql (postgres или mysql)
type SQLStore struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
}

// NewSQLStore открывает соединение и проверяет его
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewSQLStoreFromDB(db, driver)
}

// NewSQLStoreFromDB оборачивает уже открытое соединение
func NewSQLStoreFromDB(db *sql.DB, driver string) (*SQLStore, error) {
	var format sq.PlaceholderFormat
	switch driver {
	case DriverPostgres:
		format = sq.Dollar
	case DriverMySQL:
		format = sq.Question
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	return &SQLStore{
		db:     db,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
	}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) withTx(ctx context.Context, fn func(q queryer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func exec(ctx context.Context, q queryer, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

func mustAffect(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- tasks ---

var taskColumns = []string{
	"t.id", "t.title", "t.description", "t.is_done", "t.deadline", "t.user_id", "t.performer_id",
	"p.id", "p.first_name", "p.last_name", "p.middle_name", "p.birth_date",
}

func (s *SQLStore) selectTasks() sq.SelectBuilder {
	return s.sb.Select(taskColumns...).
		From("tasks t").
		LeftJoin("performers p ON p.id = t.performer_id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task                                   models.Task
		description, deadline, performerID     sql.NullString
		pID, pFirst, pLast, pMiddle, pBirthday sql.NullString
	)
	err := row.Scan(&task.ID, &task.Title, &description, &task.Done, &deadline, &task.UserID, &performerID,
		&pID, &pFirst, &pLast, &pMiddle, &pBirthday)
	if err != nil {
		return nil, err
	}
	task.Description = stringPtr(description)
	task.Deadline = stringPtr(deadline)
	task.PerformerID = stringPtr(performerID)
	if pID.Valid {
		task.Performer = &models.Performer{
			ID:         pID.String,
			FirstName:  pFirst.String,
			LastName:   pLast.String,
			MiddleName: stringPtr(pMiddle),
			BirthDate:  stringPtr(pBirthday),
		}
	}
	task.Subtasks = []models.Subtask{}
	return &task, nil
}

func (s *SQLStore) CreateTask(ctx context.Context, task *models.Task) error {
	return s.withTx(ctx, func(q queryer) error {
		_, err := exec(ctx, q, s.sb.Insert("tasks").
			Columns("id", "title", "description", "is_done", "deadline", "user_id", "performer_id").
			Values(task.ID, task.Title, nullString(task.Description), task.Done, nullString(task.Deadline),
				task.UserID, nullString(task.PerformerID)))
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		if err := s.insertSubtasks(ctx, q, task.Subtasks); err != nil {
			return err
		}
		return nil
	})
}

func (s *SQLStore) insertSubtasks(ctx context.Context, q queryer, subtasks []models.Subtask) error {
	if len(subtasks) == 0 {
		return nil
	}
	ins := s.sb.Insert("subtasks").Columns("id", "title", "is_done", "task_id")
	for _, st := range subtasks {
		ins = ins.Values(st.ID, st.Title, st.Done, st.TaskID)
	}
	if _, err := exec(ctx, q, ins); err != nil {
		return fmt.Errorf("insert subtasks: %w", err)
	}
	return nil
}

func (s *SQLStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query, args, err := s.selectTasks().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, s.db, []*models.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *SQLStore) ListTasks(ctx context.Context, userID int64, titleSubstring string) ([]*models.Task, error) {
	b := s.selectTasks().Where(sq.Eq{"t.user_id": userID}).OrderBy("t.id")
	if titleSubstring != "" {
		pattern := "%" + escapeLike(titleSubstring) + "%"
		if s.driver == DriverPostgres {
			b = b.Where(sq.ILike{"t.title": pattern})
		} else {
			b = b.Where(sq.Like{"t.title": pattern})
		}
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, s.db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *SQLStore) attachSubtasks(ctx context.Context, q queryer, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[string]*models.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query, args, err := s.sb.Select("id", "title", "is_done", "task_id").
		From("subtasks").
		Where(sq.Eq{"task_id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st models.Subtask
		if err := rows.Scan(&st.ID, &st.Title, &st.Done, &st.TaskID); err != nil {
			return err
		}
		if t, ok := byID[st.TaskID]; ok {
			t.Subtasks = append(t.Subtasks, st)
		}
	}
	return rows.Err()
}

func (s *SQLStore) UpdateTask(ctx context.Context, task *models.Task, changes models.SubtaskChanges) error {
	return s.withTx(ctx, func(q queryer) error {
		res, err := exec(ctx, q, s.sb.Update("tasks").
			Set("title", task.Title).
			Set("description", nullString(task.Description)).
			Set("is_done", task.Done).
			Set("deadline", nullString(task.Deadline)).
			Set("performer_id", nullString(task.PerformerID)).
			Where(sq.Eq{"id": task.ID, "user_id": task.UserID}))
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		if changes.Empty() {
			return nil
		}

		for _, st := range changes.Updated {
			_, err := exec(ctx, q, s.sb.Update("subtasks").
				Set("title", st.Title).
				Set("is_done", st.Done).
				Where(sq.Eq{"id": st.ID, "task_id": task.ID}))
			if err != nil {
				return fmt.Errorf("update subtask %s: %w", st.ID, err)
			}
		}
		return s.insertSubtasks(ctx, q, changes.Created)
	})
}

func (s *SQLStore) ToggleTaskDone(ctx context.Context, id string, userID int64) error {
	res, err := exec(ctx, s.db, s.sb.Update("tasks").
		Set("is_done", sq.Expr("NOT is_done")).
		Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return mustAffect(res)
}

// DeleteTask удаляет задачу владельца; подзадачи удаляет ON DELETE CASCADE
func (s *SQLStore) DeleteTask(ctx context.Context, id string, userID int64) error {
	res, err := exec(ctx, s.db, s.sb.Delete("tasks").Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return mustAffect(res)
}

func (s *SQLStore) GetSubtask(ctx context.Context, id string) (*models.Subtask, error) {
	query, args, err := s.sb.Select("id", "title", "is_done", "task_id").
		From("subtasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var st models.Subtask
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&st.ID, &st.Title, &st.Done, &st.TaskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// --- performers ---

var performerColumns = []string{"id", "first_name", "last_name", "middle_name", "birth_date"}

func scanPerformer(row rowScanner) (*models.Performer, error) {
	var (
		p                 models.Performer
		middle, birthDate sql.NullString
	)
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &middle, &birthDate); err != nil {
		return nil, err
	}
	p.MiddleName = stringPtr(middle)
	p.BirthDate = stringPtr(birthDate)
	return &p, nil
}

func (s *SQLStore) ListPerformers(ctx context.Context) ([]*models.Performer, error) {
	query, args, err := s.sb.Select(performerColumns...).From("performers").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := []*models.Performer{}
	for rows.Next() {
		p, err := scanPerformer(rows)
		if err != nil {
			return nil, err
		}
		performers = append(performers, p)
	}
	return performers, rows.Err()
}

func (s *SQLStore) GetPerformer(ctx context.Context, id string) (*models.Performer, error) {
	query, args, err := s.sb.Select(performerColumns...).From("performers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	p, err := scanPerformer(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLStore) CreatePerformer(ctx context.Context, p *models.Performer) error {
	_, err := exec(ctx, s.db, s.sb.Insert("performers").
		Columns(performerColumns...).
		Values(p.ID, p.FirstName, p.LastName, nullString(p.MiddleName), nullString(p.BirthDate)))
	if err != nil {
		return fmt.Errorf("insert performer: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdatePerformer(ctx context.Context, p *models.Performer) error {
	res, err := exec(ctx, s.db, s.sb.Update("performers").
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("middle_name", nullString(p.MiddleName)).
		Set("birth_date", nullString(p.BirthDate)).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return fmt.Errorf("update performer: %w", err)
	}
	return mustAffect(res)
}

func (s *SQLStore) DeletePerformer(ctx context.Context, id string) error {
	return s.withTx(ctx, func(q queryer) error {
		_, err := exec(ctx, q, s.sb.Update("tasks").
			Set("performer_id", nil).
			Where(sq.Eq{"performer_id": id}))
		if err != nil {
			return fmt.Errorf("detach performer: %w", err)
		}
		res, err := exec(ctx, q, s.sb.Delete("performers").Where(sq.Eq{"id": id}))
		if err != nil {
			return fmt.Errorf("delete performer: %w", err)
		}
		return mustAffect(res)
	})
}

// --- users ---

func (s *SQLStore) CreateUser(ctx context.Context, u *models.User) error {
	ins := s.sb.Insert("users").Columns("username", "password").Values(u.Username, u.PasswordHash)

	if s.driver == DriverPostgres {
		query, args, err := ins.Suffix("RETURNING id").ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
			return fmt.Errorf("insert user: %w", translateError(err))
		}
		return nil
	}

	res, err := exec(ctx, s.db, ins)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := s.sb.Select("id", "username", "password").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var u models.User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// --- helpers ---

// translateError приводит нарушение уникальности к ErrDuplicate, сохраняя исходную ошибку
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
