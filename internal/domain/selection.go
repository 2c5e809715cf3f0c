package domain

// ProjectChoice is a project offered to the user in the start form.
type ProjectChoice struct {
	ID   int64
	Name string
}

// StartInput is what the start form hands back.
type StartInput struct {
	ProjectName string
	Description string
}
