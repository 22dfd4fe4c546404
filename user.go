package beconnected

import "strings"

// A User is the core entity that interacts with the web app.
//
// An agent's HTTP requests are authenticated first by a specific request
// with email & password data matching credentials stored on a DB record for a User.
// Upon a match, the User's ID is registered in the session.
// Further requests are authenticated by referencing that session.
type User struct {
	Model
	AccessState  AccessState `json:"accessState"`
	Email        string      `json:"email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	PasswordHash []byte      `json:"-"`
	Username     string      `json:"username"`
}

// HasAccess asserts whether the User's properties give it general
// access to the web app.
func (u User) HasAccess() bool { return u.AccessState == AccessGranted }

// HomePath returns the relative URL path designated
// as the default resource in the web app
// they can access.
func (u User) HomePath() string {
	if !u.HasAccess() {
		return "/login"
	}

	return "/feed"
}

// FullName joins the first and last name of the User,
// falling back to the username if neither is set.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}

	return name
}

// GetID implements logger.LogUser.
func (u User) GetID() uint { return u.ID }

// GetEmail implements logger.LogUser.
func (u User) GetEmail() string { return u.Email }
