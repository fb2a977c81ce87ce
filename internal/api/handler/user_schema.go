package handler

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest fields are optional; nil leaves the value unchanged.
type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type deleteUserResponse struct {
	DeletedUserID int64 `json:"deleted_user_id"`
}
