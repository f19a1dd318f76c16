package dto

type CreateCompanyRequest struct {
	Name         string `json:"name" binding:"required,max=150"`
	Description  string `json:"description"`
	Location     string `json:"location" binding:"max=150"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"max=30"`
}

type UpdateCompanyRequest struct {
	Name         string `json:"name" binding:"required,max=150"`
	Description  string `json:"description"`
	Location     string `json:"location" binding:"max=150"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"max=30"`
}
