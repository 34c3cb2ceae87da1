package db

// DefaultColumn is a column every new board starts with.
type DefaultColumn struct {
	Name  string
	Color string
}

// DefaultColumns are created, in order, on every new board.
var DefaultColumns = []DefaultColumn{
	{Name: "To Do", Color: "#e2e8f0"},
	{Name: "In Progress", Color: "#fbbf24"},
	{Name: "Done", Color: "#34d399"},
}
