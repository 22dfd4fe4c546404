package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	// Default Flash Msg
	BadCredsMsg   = "Hmm... check those credentials."
	BadInputMsg   = "Hmm... check your form, something isn't correct."
	DefaultErrMsg = "Uh oh! We've run into an issue."
	LoggedOffMsg  = "You have been logged off."
	NoAccessMsg   = "Oops, sending you back somewhere safe."
	TakenMsg      = "That username or email is already taken."
	WelcomeMsg    = "Welcome to BeConnected!"
)

// The FlashSessionable wraps methods for one-time messages shown on the next rendered page.
type FlashSessionable interface {
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
