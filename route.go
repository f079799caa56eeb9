package control

// Route names understood by Admit.
const (
	RouteLogin = "login"
	RouteHome  = "home"
)

// Admit gates navigation to route. It restores the session from the
// persisted token and returns the route to redirect to, or "" to let the
// navigation proceed: without a token everything but login goes to login,
// and with a token login goes home.
func Admit(s *Session, route string) (string, error) {
	found, err := s.Restore()
	if err != nil {
		return "", err
	}
	switch {
	case found && route == RouteLogin:
		return RouteHome, nil
	case !found && route != RouteLogin:
		return RouteLogin, nil
	}
	return "", nil
}
