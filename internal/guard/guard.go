// Package guard decides, per route, whether navigation may proceed
// given the current session. Rendering and the actual routing engine
// live outside this module; the guard only consults the session's
// authentication predicate.
package guard

// Authenticator is the session predicate the guard consults.
type Authenticator interface {
	IsAuthenticated() bool
}

// Route is the navigation metadata the guard cares about.
type Route struct {
	Name          string
	RequiresAuth  bool
	RequiresGuest bool
}

// Decision says whether navigation may proceed, and where to redirect
// when it may not.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Guard evaluates routes against the session state.
type Guard struct {
	auth       Authenticator
	loginRoute string
	homeRoute  string
}

// New creates a guard. Anonymous users are sent to loginRoute,
// authenticated users leaving guest-only routes to homeRoute.
func New(auth Authenticator, loginRoute, homeRoute string) *Guard {
	return &Guard{auth: auth, loginRoute: loginRoute, homeRoute: homeRoute}
}

// Resolve decides whether the route may be entered.
func (g *Guard) Resolve(route Route) Decision {
	authenticated := g.auth.IsAuthenticated()
	switch {
	case route.RequiresAuth && !authenticated:
		return Decision{RedirectTo: g.loginRoute}
	case route.RequiresGuest && authenticated:
		return Decision{RedirectTo: g.homeRoute}
	default:
		return Decision{Allow: true}
	}
}
