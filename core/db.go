package core

// DBOrdering is a single ORDER BY term, passed by repositories into query
// builders. The zero Ascending value sorts descending; member listings
// default to newest first.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
