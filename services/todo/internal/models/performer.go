package models

// Performer исполнитель задач; общий для всех пользователей
type Performer struct {
	ID         string
	FirstName  string
	LastName   string
	MiddleName *string
	BirthDate  *string
}

// Clone глубокая копия
func (p *Performer) Clone() *Performer {
	if p == nil {
		return nil
	}
	c := *p
	c.MiddleName = cloneString(p.MiddleName)
	c.BirthDate = cloneString(p.BirthDate)
	return &c
}
