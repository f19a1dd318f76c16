package dto

type SubmitApplicationRequest struct {
	Note         string `json:"note" binding:"max=2000"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	ContactPhone string `json:"contact_phone" binding:"max=30"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}
