package models

// Student is a student record; the id is supplied by the caller.
type Student struct {
	ID    int64  `db:"student_id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// StudentFilter captures student list filters.
type StudentFilter struct {
	IDs    []int64
	Name   string
	Offset int
	Limit  int
}

// StudentPage is the payload of a student list.
type StudentPage struct {
	Students []Student `json:"students"`
	HasMore  int       `json:"has_more"`
	Offset   int       `json:"offset"`
}
