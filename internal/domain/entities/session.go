package entities

// SessionState is the transient per-user record of the one outstanding
// dispatched question. It lives only in process memory and is replaced,
// not deleted, when the next question is dispatched.
type SessionState struct {
	Question Question
	Answered bool
}
