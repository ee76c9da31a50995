package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

var (
	// ErrUnknownFriend is returned for a friend id missing from the catalog.
	ErrUnknownFriend = errors.New("views: unknown friend")
	// ErrEmptyMessage is returned when there is nothing to send.
	ErrEmptyMessage = errors.New("views: message is empty")
)

// FriendView is a voice chat with one of the companion characters.
type FriendView struct {
	capture
	deps *Deps
	ctl  *Controller[*entities.FriendMessage]

	mu     sync.Mutex
	friend *entities.Friend
	lines  []entities.ChatLine
	mood   entities.FriendMood
}

var _ CaptureView = (*FriendView)(nil)

// FriendSnapshot is the friends screen's state.
type FriendSnapshot struct {
	Friends []entities.Friend               `json:"friends"`
	Friend  *entities.Friend                `json:"friend,omitempty"`
	Mood    entities.FriendMood             `json:"mood"`
	Lines   []entities.ChatLine             `json:"lines"`
	State   State[*entities.FriendMessage] `json:"state"`
	DeviceState
}

// NewFriendView creates a new friend view
func NewFriendView(deps *Deps) *FriendView {
	return &FriendView{
		capture: capture{logger: deps.Logger.With(zap.String("view", string(entities.RouteFriends)))},
		deps:    deps,
		ctl:     NewController[*entities.FriendMessage](entities.RouteFriends, deps),
		mood:    entities.MoodHappy,
	}
}

func (v *FriendView) Route() entities.Route { return entities.RouteFriends }

// Select switches to friend id. Switching friends starts a new conversation.
func (v *FriendView) Select(id string) (entities.Friend, error) {
	friend, ok := v.deps.Catalog.Friend(id)
	if !ok {
		return entities.Friend{}, fmt.Errorf("%w: %q", ErrUnknownFriend, id)
	}

	v.mu.Lock()
	same := v.friend != nil && v.friend.ID == friend.ID
	v.mu.Unlock()
	if same {
		return friend, nil
	}

	v.ctl.Unmount()
	v.mu.Lock()
	v.friend = &friend
	v.lines = nil
	v.mood = entities.MoodHappy
	v.mu.Unlock()
	return friend, nil
}

// Send says text to friend id and voices the reply.
func (v *FriendView) Send(ctx context.Context, profile entities.Profile, id, text string) (State[*entities.FriendMessage], error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return v.ctl.State(), ErrEmptyMessage
	}
	friend, err := v.Select(id)
	if err != nil {
		return v.ctl.State(), err
	}
	return v.turn(ctx, profile, friend, func(context.Context) (string, error) { return text, nil })
}

// StopRecording transcribes the recorded question and sends it to the
// selected friend.
func (v *FriendView) StopRecording(ctx context.Context, profile entities.Profile) (any, error) {
	clip, err := v.stop()
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	var friend entities.Friend
	if v.friend != nil {
		friend = *v.friend
	}
	v.mu.Unlock()
	if friend.ID == "" {
		return nil, ErrUnknownFriend
	}

	_, err = v.turn(ctx, profile, friend, func(ctx context.Context) (string, error) {
		return v.deps.transcribe(ctx, clip)
	})
	return v.Snapshot(profile), err
}

// turn runs one exchange. The child's line joins the transcript as soon as
// it is known, unless the conversation was reset meanwhile; the friend's line
// joins only if the reply is applied.
func (v *FriendView) turn(ctx context.Context, profile entities.Profile, friend entities.Friend, say func(context.Context) (string, error)) (State[*entities.FriendMessage], error) {
	return v.ctl.RunThen(ctx, func(ctx context.Context) (*entities.FriendMessage, error) {
		text, err := say(ctx)
		if err != nil {
			return nil, err
		}

		var history []entities.ChatLine
		current := false
		active := whileActive(ctx, func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if v.friend == nil || v.friend.ID != friend.ID {
				return
			}
			current = true
			history = slices.Clone(v.lines)
			v.lines = append(v.lines, entities.ChatLine{Sender: entities.SpeakerUser, Text: text})
		})
		if !active || !current {
			return nil, ErrDiscarded
		}

		msg, err := v.deps.Gateway.GenerateFriendMessage(ctx, friend, text, profile, history)
		if err != nil {
			return nil, err
		}
		msg.AudioURL = v.deps.narrate(ctx, msg.Text, friend.VoiceName)
		return msg, nil
	}, func(msg *entities.FriendMessage) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.lines = append(v.lines, entities.ChatLine{Sender: entities.SpeakerFriend, Text: msg.Text})
		v.mood = msg.Mood
	})
}

func (v *FriendView) Snapshot(entities.Profile) any {
	state := v.ctl.State()
	device := v.deviceState()

	v.mu.Lock()
	defer v.mu.Unlock()
	snap := FriendSnapshot{
		Friends:     v.deps.Catalog.Friends,
		Mood:        v.mood,
		Lines:       slices.Clone(v.lines),
		State:       state,
		DeviceState: device,
	}
	if v.friend != nil {
		f := *v.friend
		snap.Friend = &f
	}
	return snap
}

func (v *FriendView) Unmount() {
	v.ctl.Unmount()
	v.release()
	v.mu.Lock()
	v.friend = nil
	v.lines = nil
	v.mood = entities.MoodHappy
	v.mu.Unlock()
}
