package client

// ViewState is the top-level screen the dashboard should show.
type ViewState string

const (
	// StateLoading applies while the stored session is being hydrated.
	StateLoading ViewState = "loading"
	// StateLogin applies when no usable session exists.
	StateLogin ViewState = "login"
	// StatePasswordChange applies when the session's account must change
	// its password before anything else.
	StatePasswordChange ViewState = "password_change"
	// StateDashboard is the normal authenticated view.
	StateDashboard ViewState = "dashboard"
)

// ResolveState derives the view from the hydration outcome. The password
// change gate wins over the dashboard whenever the flag is set.
func ResolveState(hydrated bool, session *Session) ViewState {
	switch {
	case !hydrated:
		return StateLoading
	case session == nil:
		return StateLogin
	case session.RequirePasswordChange:
		return StatePasswordChange
	default:
		return StateDashboard
	}
}
