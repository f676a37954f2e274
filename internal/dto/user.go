package dto

// UpdateProfileRequest is a partial profile update; only non-nil fields
// are applied. An empty ProfilePicURL resets the picture to the default
// avatar, so url validation only applies to non-empty values.
type UpdateProfileRequest struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=1"`
	Phone         *string `json:"phone" validate:"omitempty,min=7,max=20"`
	DOB           *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	ProfilePicURL *string `json:"profile_pic_url" validate:"omitempty,url"`
}
