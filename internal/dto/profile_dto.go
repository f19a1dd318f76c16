package dto

type UpdateProfileRequest struct {
	FullName  string   `json:"full_name" binding:"required,max=100"`
	Bio       *string  `json:"bio"`
	Interests []string `json:"interests"`
	Phone     *string  `json:"phone"`
}
