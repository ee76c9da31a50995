package views

import (
	"fmt"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// View is one screen of the companion.
type View interface {
	Route() entities.Route
	// Snapshot returns the JSON-ready state of the screen for profile.
	Snapshot(profile entities.Profile) any
	// Unmount discards generated artifacts, releases devices and drops the
	// results of in-flight actions.
	Unmount()
}

// Set is the views of one session, one per route.
type Set struct {
	Dashboard *DashboardView
	Story     *StoryView
	Song      *SongView
	Toy       *ToyView
	Friend    *FriendView
	Video     *VideoView
	Guide     *GuideView
	Game      *GameView
	Shop      *ShopView
	Camera    *CameraView

	byRoute map[entities.Route]View
}

// NewSet creates the views of a session.
func NewSet(deps *Deps) *Set {
	s := &Set{
		Dashboard: NewDashboardView(deps),
		Story:     NewStoryView(deps),
		Song:      NewSongView(deps),
		Toy:       NewToyView(deps),
		Friend:    NewFriendView(deps),
		Video:     NewVideoView(deps),
		Guide:     NewGuideView(deps),
		Game:      NewGameView(deps),
		Shop:      NewShopView(deps),
		Camera:    NewCameraView(deps),
	}
	s.byRoute = make(map[entities.Route]View, len(entities.Routes))
	for _, v := range []View{s.Dashboard, s.Story, s.Song, s.Toy, s.Friend, s.Video, s.Guide, s.Game, s.Shop, s.Camera} {
		s.byRoute[v.Route()] = v
	}
	return s
}

// View returns the view for r.
func (s *Set) View(r entities.Route) View {
	return s.byRoute[r]
}

// Capture returns the view for r if it records from a device.
func (s *Set) Capture(r entities.Route) (CaptureView, error) {
	cv, ok := s.byRoute[r].(CaptureView)
	if !ok {
		return nil, fmt.Errorf("view %q does not capture media", r)
	}
	return cv, nil
}

// UnmountAll unmounts every view.
func (s *Set) UnmountAll() {
	for _, v := range s.byRoute {
		v.Unmount()
	}
}
