package domain

// SystemPerformer is recorded when no caller identity is available.
const SystemPerformer = "system"

// Performer identifies who triggered a change.
type Performer struct {
	Name  string
	Email string
}

// Label renders the performer for audit entries.
func (p Performer) Label() string {
	switch {
	case p.Email != "" && p.Name != "":
		return p.Name + " <" + p.Email + ">"
	case p.Email != "":
		return p.Email
	case p.Name != "":
		return p.Name
	}
	return SystemPerformer
}
