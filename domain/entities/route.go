package entities

import "fmt"

// Route names one screen of the companion.
type Route string

const (
	RouteDashboard  Route = "dashboard"
	RouteStories    Route = "stories"
	RouteSongs      Route = "songs"
	RouteToys       Route = "toys"
	RouteFriends    Route = "friends"
	RouteVideos     Route = "videos"
	RouteGuide      Route = "guide"
	RouteMonkeyGame Route = "monkey_game"
	RouteShop       Route = "shop"
	RouteBabyCam    Route = "baby_cam"
)

// Routes lists every screen in navigation order.
var Routes = []Route{
	RouteDashboard,
	RouteStories,
	RouteSongs,
	RouteToys,
	RouteFriends,
	RouteVideos,
	RouteGuide,
	RouteMonkeyGame,
	RouteShop,
	RouteBabyCam,
}

// ParseRoute returns the route named s.
func ParseRoute(s string) (Route, error) {
	for _, r := range Routes {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", s)
}
