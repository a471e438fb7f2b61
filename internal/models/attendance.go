package models

// CourseAttendance is one course component row as reported by the portal:
// how many sessions were held and how many the student attended.
type CourseAttendance struct {
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Component   string `json:"component"` // e.g. theory, lab
	Present     int    `json:"present"`
	Total       int    `json:"total"`
}
