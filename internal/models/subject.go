package models

// Subject is an academic unit with a unique code and an assigned coordinator.
type Subject struct {
	ID            int64  `db:"subject_id" json:"id"`
	Code          string `db:"subject_code" json:"code"`
	Name          string `db:"name" json:"name"`
	CoordinatorID int64  `db:"coordinator_id" json:"coordinator_id"`
	CreateDate    int64  `db:"create_date" json:"create_date"`
	Status        Status `db:"status" json:"status"`
}

// SubjectFilter captures the list filters. All set fields are ANDed.
type SubjectFilter struct {
	IDs    []int64
	Code   string
	Name   string
	Offset int
	Limit  int
}

// CoordinatorInfo is the coordinator section embedded in subject payloads.
type CoordinatorInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinDate int64  `json:"join_date"`
	Status   Status `json:"status"`
}

// SubjectDetail is the payload of a single subject lookup.
type SubjectDetail struct {
	ID          int64            `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Coordinator *CoordinatorInfo `json:"coordinator"`
	Supervisors []interface{}    `json:"supervisors"`
	Teams       []interface{}    `json:"teams"`
	Status      Status           `json:"status"`
}

// SubjectItem is one entry of a subject list. It carries no name, supervisors or teams.
type SubjectItem struct {
	ID          int64            `json:"id"`
	Code        string           `json:"code"`
	Coordinator *CoordinatorInfo `json:"coordinator"`
	Status      Status           `json:"status"`
}

// SubjectPage is the payload of a subject list.
type SubjectPage struct {
	Subjects []SubjectItem `json:"subjects"`
	HasMore  int           `json:"has_more"`
	Offset   int           `json:"offset"`
}
