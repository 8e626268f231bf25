package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sun1tar/todo-backend/services/todo/internal/models"
)

// MemoryStore хранилище в памяти процесса (DB_DRIVER=memory и тесты).
// Все операции выполняются под одной блокировкой, поэтому атомарны.
type MemoryStore struct {
	mu         sync.RWMutex
	nextUserID int64
	users      map[int64]*models.User
	tasks      map[string]*models.Task
	subtasks   map[string]*models.Subtask
	performers map[string]*models.Performer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*models.User),
		tasks:      make(map[string]*models.Task),
		subtasks:   make(map[string]*models.Subtask),
		performers: make(map[string]*models.Performer),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() error {
	return nil
}

// --- tasks ---

func (m *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; ok {
		return fmt.Errorf("insert task %s: %w", task.ID, ErrDuplicate)
	}
	if _, ok := m.users[task.UserID]; !ok {
		return fmt.Errorf("insert task %s: unknown user %d", task.ID, task.UserID)
	}
	seen := make(map[string]bool, len(task.Subtasks))
	for _, st := range task.Subtasks {
		if _, ok := m.subtasks[st.ID]; ok || seen[st.ID] {
			return fmt.Errorf("insert subtask %s: %w", st.ID, ErrDuplicate)
		}
		seen[st.ID] = true
	}

	stored := task.Clone()
	stored.Performer = nil
	stored.Subtasks = nil
	m.tasks[task.ID] = stored
	for _, st := range task.Subtasks {
		m.subtasks[st.ID] = &st
	}
	return nil
}

// hydrate собирает агрегат: исполнитель и подзадачи. Вызывать под блокировкой.
func (m *MemoryStore) hydrate(stored *models.Task) *models.Task {
	t := stored.Clone()
	if t.PerformerID != nil {
		t.Performer = m.performers[*t.PerformerID].Clone()
	}
	t.Subtasks = []models.Subtask{}
	for _, st := range m.subtasks {
		if st.TaskID == t.ID {
			t.Subtasks = append(t.Subtasks, *st)
		}
	}
	sort.Slice(t.Subtasks, func(i, j int) bool { return t.Subtasks[i].ID < t.Subtasks[j].ID })
	return t
}

func (m *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return m.hydrate(stored), nil
}

func (m *MemoryStore) ListTasks(ctx context.Context, userID int64, titleSubstring string) ([]*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(titleSubstring)
	tasks := []*models.Task{}
	for _, stored := range m.tasks {
		if stored.UserID != userID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(stored.Title), needle) {
			continue
		}
		tasks = append(tasks, m.hydrate(stored))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, task *models.Task, changes models.SubtaskChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return ErrNotFound
	}
	for _, st := range changes.Created {
		if _, exists := m.subtasks[st.ID]; exists {
			return fmt.Errorf("insert subtask %s: %w", st.ID, ErrDuplicate)
		}
	}

	stored.Title = task.Title
	stored.Description = cloneStr(task.Description)
	stored.Done = task.Done
	stored.Deadline = cloneStr(task.Deadline)
	stored.PerformerID = cloneStr(task.PerformerID)
	if changes.Empty() {
		return nil
	}

	for _, st := range changes.Updated {
		if cur, ok := m.subtasks[st.ID]; ok && cur.TaskID == task.ID {
			cur.Title = st.Title
			cur.Done = st.Done
		}
	}
	for _, st := range changes.Created {
		st.TaskID = task.ID
		m.subtasks[st.ID] = &st
	}
	return nil
}

func (m *MemoryStore) ToggleTaskDone(ctx context.Context, id string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[id]
	if !ok || stored.UserID != userID {
		return ErrNotFound
	}
	stored.Done = !stored.Done
	return nil
}

func (m *MemoryStore) DeleteTask(ctx context.Context, id string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.tasks[id]; !ok || stored.UserID != userID {
		return ErrNotFound
	}
	delete(m.tasks, id)
	for sid, st := range m.subtasks {
		if st.TaskID == id {
			delete(m.subtasks, sid)
		}
	}
	return nil
}

func (m *MemoryStore) GetSubtask(ctx context.Context, id string) (*models.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.subtasks[id]
	if !ok {
		return nil, nil
	}
	c := *st
	return &c, nil
}

// --- performers ---

func (m *MemoryStore) ListPerformers(ctx context.Context) ([]*models.Performer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	performers := make([]*models.Performer, 0, len(m.performers))
	for _, p := range m.performers {
		performers = append(performers, p.Clone())
	}
	sort.Slice(performers, func(i, j int) bool { return performers[i].ID < performers[j].ID })
	return performers, nil
}

func (m *MemoryStore) GetPerformer(ctx context.Context, id string) (*models.Performer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.performers[id].Clone(), nil
}

func (m *MemoryStore) CreatePerformer(ctx context.Context, p *models.Performer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.performers[p.ID]; ok {
		return fmt.Errorf("insert performer %s: %w", p.ID, ErrDuplicate)
	}
	m.performers[p.ID] = p.Clone()
	return nil
}

func (m *MemoryStore) UpdatePerformer(ctx context.Context, p *models.Performer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.performers[p.ID]; !ok {
		return ErrNotFound
	}
	m.performers[p.ID] = p.Clone()
	return nil
}

func (m *MemoryStore) DeletePerformer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.performers[id]; !ok {
		return ErrNotFound
	}
	delete(m.performers, id)
	for _, t := range m.tasks {
		if t.PerformerID != nil && *t.PerformerID == id {
			t.PerformerID = nil
		}
	}
	return nil
}

// --- users ---

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("insert user %s: %w", u.Username, ErrDuplicate)
		}
	}
	m.nextUserID++
	u.ID = m.nextUserID
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
