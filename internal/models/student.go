package models

// StudentProfile is the identity returned by the portal on login.
type StudentProfile struct {
	RegisterNo string `json:"register_no"`
	Name       string `json:"name"`
	Program    string `json:"program,omitempty"`
	Semester   int    `json:"semester,omitempty"`
}
