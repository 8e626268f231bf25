package models

// Task корневая сущность агрегата: задача со своими подзадачами
type Task struct {
	ID          string
	Title       string
	Description *string
	Done        bool
	Deadline    *string
	UserID      int64
	PerformerID *string
	Performer   *Performer
	Subtasks    []Subtask
}

// Subtask принадлежит ровно одной задаче
type Subtask struct {
	ID     string
	Title  string
	Done   bool
	TaskID string
}

// SubtaskChanges подзадачи, которые нужно сохранить вместе с задачей
type SubtaskChanges struct {
	Updated []Subtask
	Created []Subtask
}

// Empty сообщает, что изменений подзадач нет
func (c SubtaskChanges) Empty() bool {
	return len(c.Updated) == 0 && len(c.Created) == 0
}

// OwnedBy сообщает, принадлежит ли задача пользователю
func (t *Task) OwnedBy(userID int64) bool {
	return t != nil && t.UserID == userID
}

// Subtask ищет подзадачу по id среди загруженных
func (t *Task) Subtask(id string) (*Subtask, bool) {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i], true
		}
	}
	return nil, false
}

// Clone глубокая копия задачи
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Description = cloneString(t.Description)
	c.Deadline = cloneString(t.Deadline)
	c.PerformerID = cloneString(t.PerformerID)
	c.Performer = t.Performer.Clone()
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
