package repository

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password VARCHAR(200) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS performers (
		id VARCHAR(80) PRIMARY KEY,
		first_name VARCHAR(80) NOT NULL,
		last_name VARCHAR(80) NOT NULL,
		middle_name VARCHAR(80),
		birth_date VARCHAR(100)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(80) PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(500),
		is_done BOOLEAN NOT NULL DEFAULT FALSE,
		deadline VARCHAR(100),
		user_id INTEGER NOT NULL REFERENCES users(id),
		performer_id VARCHAR(80) REFERENCES performers(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	`CREATE TABLE IF NOT EXISTS subtasks (
		id VARCHAR(80) PRIMARY KEY,
		title VARCHAR(120) NOT NULL,
		is_done BOOLEAN NOT NULL DEFAULT FALSE,
		task_id VARCHAR(80) NOT NULL REFERENCES tasks(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS subtasks_task_id_idx ON subtasks (task_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password VARCHAR(200) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS performers (
		id VARCHAR(80) PRIMARY KEY,
		first_name VARCHAR(80) NOT NULL,
		last_name VARCHAR(80) NOT NULL,
		middle_name VARCHAR(80),
		birth_date VARCHAR(100)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(80) PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(500),
		is_done BOOLEAN NOT NULL DEFAULT FALSE,
		deadline VARCHAR(100),
		user_id INT NOT NULL,
		performer_id VARCHAR(80),
		INDEX tasks_user_id_idx (user_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (performer_id) REFERENCES performers(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subtasks (
		id VARCHAR(80) PRIMARY KEY,
		title VARCHAR(120) NOT NULL,
		is_done BOOLEAN NOT NULL DEFAULT FALSE,
		task_id VARCHAR(80) NOT NULL,
		INDEX subtasks_task_id_idx (task_id),
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	)`,
}

// Migrate создаёт таблицы, если их ещё нет
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.driver == DriverMySQL {
		schema = mysqlSchema
	}
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
