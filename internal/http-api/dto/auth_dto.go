package dto

// SignupForm mirrors the registration page fields.
type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Password1 string `form:"password1" binding:"required,min=8,max=128"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" binding:"required,min=8,max=128"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

type PasswordResetForm struct {
	Email string `form:"email" binding:"required,email,max=254"`
}

type SetPasswordForm struct {
	NewPassword1 string `form:"new_password1" binding:"required,min=8,max=128"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}
