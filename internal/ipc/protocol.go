package ipc

import "errors"

// Commands understood by a resident session.
const (
	CommandStatus        = "status"
	CommandInstantSwitch = "instant-switch"
	CommandSelect        = "select"
	CommandNextTrigger   = "next-trigger"
	CommandDialogOpen    = "dialog-open"
	CommandDialogClose   = "dialog-close"
	CommandSave          = "save"
)

type Request struct {
	Command string `json:"command"`
	// Profile names the target of select; Dialog the kind for dialog-open.
	Profile string `json:"profile,omitempty"`
	Dialog  string `json:"dialog,omitempty"`
}

type Response struct {
	OK       bool   `json:"ok"`
	State    string `json:"state,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Failure wraps err as an OK=false response.
func Failure(err error) Response {
	return Response{Error: err.Error()}
}

// Err returns the session's error for a failed response, nil otherwise.
func (r Response) Err() error {
	if r.OK {
		return nil
	}
	if r.Error == "" {
		return errors.New("session reported failure")
	}
	return errors.New(r.Error)
}
