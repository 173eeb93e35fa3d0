package handler

import "github.com/readshelf/library-system/internal/auth/core/domain"

// --- Request types ---

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=150,username"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
	Password2 string `json:"password2"  validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       string `json:"bio"        validate:"omitempty,max=500"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Location  string `json:"location"   validate:"omitempty,max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword  string `json:"old_password"  validate:"required"`
	NewPassword  string `json:"new_password"  validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" validate:"required,eqfield=NewPassword"`
}

// updateProfileRequest uses pointers so PATCH can distinguish "absent" from
// "set to empty". PUT reuses the same shape.
type updateProfileRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"        validate:"omitempty,max=500"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Location  *string `json:"location"   validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// --- Response types ---

type profileResponse struct {
	Bio       string `json:"bio,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type userResponse struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	IsStaff   bool            `json:"is_staff"`
	Profile   profileResponse `json:"profile"`
}

// publicUserResponse is the cross-service view served to the books service.
// It deliberately omits the profile.
type publicUserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type accessResponse struct {
	Access string `json:"access"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		Profile: profileResponse{
			Bio:       u.Profile.Bio,
			BirthDate: u.Profile.BirthDate,
			Location:  u.Profile.Location,
			AvatarURL: u.Profile.AvatarURL,
		},
	}
}

func toPublicUserResponse(u *domain.User) publicUserResponse {
	return publicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}
