package domain

// Category is a spending category shared by all users. Names are unique.
type Category struct {
	ID    int64
	Name  string
	Color string
}
