package dto

// AuthForm is the data of the login and register pages
type AuthForm struct {
	Title      string
	Action     string
	Submit     string
	Username   string
	AltText    string
	AltLink    string
	AltLinkTxt string
}

// LoginForm returns the login page form
func LoginForm(username string) AuthForm {
	return AuthForm{
		Title:      "Sign in to your account",
		Action:     "/login",
		Submit:     "Sign in",
		Username:   username,
		AltText:    "Don't have an account?",
		AltLink:    "/register",
		AltLinkTxt: "Register",
	}
}

// RegisterForm returns the register page form
func RegisterForm(username string) AuthForm {
	return AuthForm{
		Title:      "Create your account",
		Action:     "/register",
		Submit:     "Register",
		Username:   username,
		AltText:    "Already have an account?",
		AltLink:    "/login",
		AltLinkTxt: "Sign in",
	}
}
