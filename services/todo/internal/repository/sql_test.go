package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun1tar/todo-backend/services/todo/internal/models"
)

var taskRowColumns = []string{
	"id", "title", "description", "is_done", "deadline", "user_id", "performer_id",
	"id", "first_name", "last_name", "middle_name", "birth_date",
}

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLStoreFromDB(db, driver)
	require.NoError(t, err)
	return store, mock
}

func TestNewSQLStoreFromDBRejectsUnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLStoreFromDB(db, "sqlite3")
	assert.Error(t, err)
}

func TestSQLStoreGetTask(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectQuery(`SELECT (.+) FROM tasks t LEFT JOIN performers p ON p\.id = t\.performer_id WHERE t\.id = \$1`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow("t1", "Buy milk", nil, false, "friday", int64(1), "p1", "p1", "Ivan", "Petrov", nil, nil))
	mock.ExpectQuery(`SELECT id, title, is_done, task_id FROM subtasks WHERE task_id IN \(\$1\) ORDER BY id`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "is_done", "task_id"}).
			AddRow("s1", "find shop", true, "t1"))

	task, err := store.GetTask(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Description)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, "friday", *task.Deadline)
	require.NotNil(t, task.Performer)
	assert.Equal(t, "Petrov", task.Performer.LastName)
	assert.Nil(t, task.Performer.MiddleName)
	assert.Equal(t, []models.Subtask{{ID: "s1", Title: "find shop", Done: true, TaskID: "t1"}}, task.Subtasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetTaskMissing(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectQuery(`SELECT (.+) FROM tasks t`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	task, err := store.GetTask(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateTaskCommits(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs("t1", "Buy milk", nil, false, nil, int64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subtasks`).
		WithArgs("s1", "find shop", false, "t1", "s2", "pay", true, "t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := store.CreateTask(context.Background(), &models.Task{
		ID:     "t1",
		Title:  "Buy milk",
		UserID: 1,
		Subtasks: []models.Subtask{
			{ID: "s1", Title: "find shop", TaskID: "t1"},
			{ID: "s2", Title: "pay", Done: true, TaskID: "t1"},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateTaskRollsBackOnSubtaskFailure(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tasks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subtasks`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := store.CreateTask(context.Background(), &models.Task{
		ID: "t1", Title: "a", UserID: 1,
		Subtasks: []models.Subtask{{ID: "s1", Title: "x", TaskID: "t1"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateTask(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)
	deadline := "monday"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET title = \$1, description = \$2, is_done = \$3, deadline = \$4, performer_id = \$5 WHERE id = \$6 AND user_id = \$7`).
		WithArgs("new", nil, true, "monday", nil, "t1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE subtasks SET title = \$1, is_done = \$2 WHERE id = \$3 AND task_id = \$4`).
		WithArgs("edited", true, "s1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subtasks`).
		WithArgs("s9", "fresh", false, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateTask(context.Background(),
		&models.Task{ID: "t1", Title: "new", Done: true, Deadline: &deadline, UserID: 1},
		models.SubtaskChanges{
			Updated: []models.Subtask{{ID: "s1", Title: "edited", Done: true, TaskID: "t1"}},
			Created: []models.Subtask{{ID: "s9", Title: "fresh", TaskID: "t1"}},
		})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateTaskMissingRollsBack(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.UpdateTask(context.Background(), &models.Task{ID: "t1", Title: "x"}, models.SubtaskChanges{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateTaskWithoutSubtaskChanges(t *testing.T) {
	store, mock := newMockStore(t, DriverMySQL)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET (.+) WHERE id = \? AND user_id = \?`).
		WithArgs("same", nil, false, nil, nil, "t1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateTask(context.Background(), &models.Task{ID: "t1", Title: "same", UserID: 2}, models.SubtaskChanges{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreToggleTaskDone(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectExec(`UPDATE tasks SET is_done = NOT is_done WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tasks SET is_done = NOT is_done WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.ToggleTaskDone(context.Background(), "t1", 1))
	// чужая задача не затрагивается
	assert.ErrorIs(t, store.ToggleTaskDone(context.Background(), "t1", 2), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDeleteTaskScopedToOwner(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteTask(context.Background(), "t1", 1))
	assert.ErrorIs(t, store.DeleteTask(context.Background(), "t1", 2), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreListTasksMySQLTitleFilter(t *testing.T) {
	store, mock := newMockStore(t, DriverMySQL)

	mock.ExpectQuery(`SELECT (.+) FROM tasks t LEFT JOIN performers p ON p\.id = t\.performer_id WHERE t\.user_id = \? AND t\.title LIKE \? ORDER BY t\.id`).
		WithArgs(int64(3), `%50\%%`).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow("t1", "save 50%", "d", true, nil, int64(3), nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery(`FROM subtasks WHERE task_id IN \(\?\)`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "is_done", "task_id"}))

	tasks, err := store.ListTasks(context.Background(), 3, "50%")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].Performer)
	assert.Equal(t, "d", *tasks[0].Description)
	assert.NotNil(t, tasks[0].Subtasks)
	assert.Empty(t, tasks[0].Subtasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreListTasksEmptySkipsSubtaskQuery(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectQuery(`FROM tasks t`).WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, err := store.ListTasks(context.Background(), 1, "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateUserPostgresReturningID(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectQuery(`INSERT INTO users \(username,password\) VALUES \(\$1,\$2\) RETURNING id`).
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	u := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	assert.Equal(t, int64(5), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateUserMySQLLastInsertID(t *testing.T) {
	store, mock := newMockStore(t, DriverMySQL)

	mock.ExpectExec(`INSERT INTO users \(username,password\) VALUES \(\?,\?\)`).
		WithArgs("alice", "hash").
		WillReturnResult(sqlmock.NewResult(9, 1))

	u := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	assert.Equal(t, int64(9), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateUserDuplicate(t *testing.T) {
	store, mock := newMockStore(t, DriverMySQL)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := store.CreateUser(context.Background(), &models.User{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDeletePerformerDetachesTasks(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET performer_id = \$1 WHERE performer_id = \$2`).
		WithArgs(nil, "p1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM performers WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeletePerformer(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetPerformerMissing(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)

	mock.ExpectQuery(`SELECT id, first_name, last_name, middle_name, birth_date FROM performers WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(performerColumns))

	p, err := store.GetPerformer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreBeginFailure(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := store.DeletePerformer(context.Background(), "p1")
	assert.ErrorContains(t, err, "pool exhausted")
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	store, mock := newMockStore(t, DriverPostgres)
	for range postgresSchema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
