package models

// Team is a project team supervised by a supervisor account.
type Team struct {
	ID           int64  `db:"team_id" json:"id"`
	Name         string `db:"name" json:"name"`
	ProjectName  string `db:"project_name" json:"project_name"`
	Description  string `db:"description" json:"description"`
	SupervisorID int64  `db:"supervisor_id" json:"supervisor_id"`
	CreateDate   int64  `db:"create_date" json:"create_date"`
	Expired      int64  `db:"expired" json:"expired"`
}

// TeamMember links a student to a team.
type TeamMember struct {
	ID        int64 `db:"id" json:"id"`
	TeamID    int64 `db:"team_id" json:"team_id"`
	StudentID int64 `db:"student_id" json:"student_id"`
}

// TeamFilter captures team list filters.
type TeamFilter struct {
	Name   string
	Offset int
	Limit  int
}

// TeamDetail is a team with its member students.
type TeamDetail struct {
	Team
	Members []Student `json:"members"`
}

// TeamPage is the payload of a team list.
type TeamPage struct {
	Teams   []Team `json:"teams"`
	HasMore int    `json:"has_more"`
	Offset  int    `json:"offset"`
}
