package entity

// ContactEntry is one row of a county's contact sheet. Position keeps the
// sheet ordered the way the county arranged it.
type ContactEntry struct {
	ID       int64
	CountyID int64
	Position int
	Role     string
	Name     string
	Email    string
	Phone    string
}
