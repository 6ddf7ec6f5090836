package ui

// Delegate is the on-device confirmation surface. Both calls block until
// the user acts. A false return is a rejection, not an error; errors mean
// the surface itself failed and abort the flow the same way.
type Delegate interface {
	// Confirm shows a yes/no prompt.
	Confirm(msg string) (bool, error)

	// ScrollPage shows a titled body the user can scroll through before
	// accepting or rejecting.
	ScrollPage(title, body string) (bool, error)

	// ShowNotice displays a short non-blocking notice, e.g. the generic
	// resync message after an aborted flow.
	ShowNotice(msg string)
}
