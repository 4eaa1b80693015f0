package service

// Task represents a single task item.
type Task struct {
	ID    string
	Title string
}

// IsZero reports whether the task has no store-assigned ID.
func (t Task) IsZero() bool {
	return t.ID == ""
}
