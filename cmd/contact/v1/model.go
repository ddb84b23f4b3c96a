package contact

type ContactEntryRequest struct {
	Role  string `json:"role" validate:"required"`
	Name  string `json:"name" validate:"-"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"-"`
}

type UpdateContactsRequest struct {
	Contacts []ContactEntryRequest `json:"contacts" validate:"required,dive"`
}

type ContactEntryResponse struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ContactSheetResponse struct {
	CountyID int64                  `json:"countyId"`
	Contacts []ContactEntryResponse `json:"contacts"`
}
