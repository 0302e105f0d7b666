package dto

// DeleteAccountRequest represents the body of DELETE /users/me.
type DeleteAccountRequest struct {
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

// UpdateProfileRequest is the body of PATCH /users/me. Omitted fields are
// left unchanged; an empty timezone resets it to UTC.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}
