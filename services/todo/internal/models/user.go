package models

// User владелец задач. PasswordHash никогда не отдаётся наружу.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}
