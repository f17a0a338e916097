package application

import "strings"

// Route paths of the client.
const (
	RouteAuth      = "/auth"
	RouteDashboard = "/"
	RouteCalendar  = "/calendar"
	RouteNewEvent  = "/events/new"
	RouteEditEvent = "/events/:id/edit"
	RouteSettings  = "/settings"
	RouteFriends   = "/friends"
	RouteEventRoom = "/events/:id/room"
)

// Route is one navigable screen.
type Route struct {
	Pattern string
	Private bool
}

// Routes lists every screen; all but the sign-in screen need a user.
var Routes = []Route{
	{Pattern: RouteAuth},
	{Pattern: RouteDashboard, Private: true},
	{Pattern: RouteCalendar, Private: true},
	{Pattern: RouteNewEvent, Private: true},
	{Pattern: RouteEditEvent, Private: true},
	{Pattern: RouteSettings, Private: true},
	{Pattern: RouteFriends, Private: true},
	{Pattern: RouteEventRoom, Private: true},
}

// Navigator resolves paths against the routes and the session guard.
type Navigator struct {
	authenticated func() bool
}

// NewNavigator builds a Navigator. authenticated reports whether a user is
// signed in.
func NewNavigator(authenticated func() bool) *Navigator {
	return &Navigator{authenticated: authenticated}
}

// Match returns the route serving path and its path parameters.
func Match(path string) (Route, map[string]string, bool) {
	segments := splitPath(path)
	for _, route := range Routes {
		pattern := splitPath(route.Pattern)
		if len(pattern) != len(segments) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, part := range pattern {
			if name, ok := strings.CutPrefix(part, ":"); ok {
				if segments[i] == "" {
					matched = false
					break
				}
				params[name] = segments[i]
				continue
			}
			if part != segments[i] {
				matched = false
				break
			}
		}
		if matched {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

// Resolve returns the path to show for a requested path. Private routes
// redirect to the sign-in screen without a user, and unknown paths fall back
// to the dashboard.
func (n *Navigator) Resolve(path string) string {
	route, _, ok := Match(path)
	if !ok {
		path, route = RouteDashboard, Route{Pattern: RouteDashboard, Private: true}
	}
	if route.Private && (n == nil || n.authenticated == nil || !n.authenticated()) {
		return RouteAuth
	}
	return path
}

// EventRoomPath returns the room path of an event.
func EventRoomPath(eventID string) string {
	return strings.Replace(RouteEventRoom, ":id", eventID, 1)
}

// EditEventPath returns the edit path of an event.
func EditEventPath(eventID string) string {
	return strings.Replace(RouteEditEvent, ":id", eventID, 1)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}
