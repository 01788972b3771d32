// Package guard decides whether a view may render for the current session.
package guard

import (
	"net/url"
	"strings"

	"github.com/International-Combat-Archery-Alliance/registration-client/session"
	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

type Outcome string

const (
	OUTCOME_WAIT     Outcome = "WAIT"
	OUTCOME_REDIRECT Outcome = "REDIRECT"
	OUTCOME_RENDER   Outcome = "RENDER"
)

const (
	PathLanding = "/"
	PathAuth    = "/auth"
)

// Decision is what to do with a navigation. Path is set only for redirects.
type Decision struct {
	Outcome Outcome
	Path    string
}

func wait() Decision {
	return Decision{Outcome: OUTCOME_WAIT}
}

func render() Decision {
	return Decision{Outcome: OUTCOME_RENDER}
}

func redirect(path string) Decision {
	return Decision{Outcome: OUTCOME_REDIRECT, Path: path}
}

// Protected gates a view behind sign-in and, when requiredRole is not
// empty, behind that role.
func Protected(state session.State, requiredRole users.Role) Decision {
	if state.Loading {
		return wait()
	}
	if state.User == nil {
		return redirect(PathAuth)
	}
	if requiredRole != "" && state.User.Role != requiredRole {
		return redirect(HomeFor(state.User.Role))
	}
	return render()
}

// PublicOnly gates views that make no sense once signed in.
func PublicOnly(state session.State) Decision {
	if state.Loading {
		return wait()
	}
	if state.User != nil {
		return redirect(HomeFor(state.User.Role))
	}
	return render()
}

func HomeFor(role users.Role) string {
	if role == users.ROLE_ADMIN {
		return "/admin"
	}
	return "/dashboard"
}

// AfterLogin is where a freshly signed-in user lands. A pending share link
// wins over the role home.
func AfterLogin(user users.User, pending session.PendingRedirect) string {
	switch {
	case pending.ShareID != "":
		return "/share/" + url.PathEscape(pending.ShareID)
	case pending.EventID != "":
		return "/dashboard/browse-events?event=" + url.QueryEscape(pending.EventID)
	default:
		return HomeFor(user.Role)
	}
}

type access int

const (
	accessPublic access = iota
	accessPublicOnly
	accessSignedIn
	accessAdmin
)

type route struct {
	pattern string
	access  access
}

var routes = []route{
	{pattern: "/", access: accessPublic},
	{pattern: "/auth", access: accessPublicOnly},
	{pattern: "/share/:shareId", access: accessPublic},
	{pattern: "/admin", access: accessAdmin},
	{pattern: "/admin/events", access: accessAdmin},
	{pattern: "/admin/create-event", access: accessAdmin},
	{pattern: "/dashboard", access: accessSignedIn},
	{pattern: "/dashboard/registrations", access: accessSignedIn},
	{pattern: "/dashboard/browse-events", access: accessSignedIn},
}

// Resolve applies the guard configured for path. Unknown paths go to the
// landing page.
func Resolve(state session.State, path string) Decision {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	for _, r := range routes {
		if !matches(r.pattern, path) {
			continue
		}
		switch r.access {
		case accessPublicOnly:
			return PublicOnly(state)
		case accessSignedIn:
			return Protected(state, "")
		case accessAdmin:
			return Protected(state, users.ROLE_ADMIN)
		default:
			return render()
		}
	}
	return redirect(PathLanding)
}

// Params extracts the ":name" segments of the route matching path.
func Params(path string) map[string]string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, r := range routes {
		if matches(r.pattern, path) {
			return params(r.pattern, path)
		}
	}
	return nil
}

func matches(pattern string, path string) bool {
	ps := splitPath(pattern)
	xs := splitPath(path)
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

func params(pattern string, path string) map[string]string {
	out := map[string]string{}
	ps := splitPath(pattern)
	xs := splitPath(path)
	for i := range ps {
		if name, ok := strings.CutPrefix(ps[i], ":"); ok {
			v, err := url.PathUnescape(xs[i])
			if err != nil {
				v = xs[i]
			}
			out[name] = v
		}
	}
	return out
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
