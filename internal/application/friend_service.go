package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
	"github.com/example/eventhub/internal/selectors"
)

// SearchLimit caps the number of profiles a friend search returns.
const SearchLimit = 5

// FriendFilter narrows a friend list by presence.
type FriendFilter string

const (
	FilterAll     FriendFilter = "all"
	FilterOnline  FriendFilter = "online"
	FilterOffline FriendFilter = "offline"
)

// FriendBackend is the part of the gateway the friend service needs.
type FriendBackend interface {
	gateway.Profiles
	gateway.Friendships
}

// Friend is another user related to the current one, with their profile.
type Friend struct {
	UserID    string
	Username  string
	FullName  string
	AvatarURL string
	LastSeen  time.Time
	Since     time.Time
}

// FriendService manages the current user's friendships.
type FriendService struct {
	backend FriendBackend
	session SessionSource
	logger  *slog.Logger
}

// NewFriendService constructs a FriendService.
func NewFriendService(backend FriendBackend, session SessionSource) *FriendService {
	return NewFriendServiceWithLogger(backend, session, nil)
}

// NewFriendServiceWithLogger constructs a FriendService with a specified logger.
func NewFriendServiceWithLogger(backend FriendBackend, session SessionSource, logger *slog.Logger) *FriendService {
	return &FriendService{backend: backend, session: session, logger: defaultLogger(logger)}
}

func (s *FriendService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "FriendService", operation, attrs...)
}

func (s *FriendService) me() (string, error) {
	if s == nil || s.backend == nil {
		return "", fmt.Errorf("FriendService is not configured")
	}
	userID := s.session.userID()
	if userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Friends lists accepted friendships started by the current user.
func (s *FriendService) Friends(ctx context.Context) ([]Friend, error) {
	userID, err := s.me()
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.ListFriendships(ctx,
		query.New().Eq("user_id", userID).Eq("status", gateway.FriendshipAccepted),
		gateway.SideFriend)
	if err != nil {
		s.loggerWith(ctx, "Friends").ErrorContext(ctx, "failed to load friends", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return friendsFrom(rows), nil
}

// Requests lists pending requests addressed to the current user, with the
// requester's profile.
func (s *FriendService) Requests(ctx context.Context) ([]Friend, error) {
	userID, err := s.me()
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.ListFriendships(ctx,
		query.New().Eq("friend_id", userID).Eq("status", gateway.FriendshipPending),
		gateway.SideRequester)
	if err != nil {
		s.loggerWith(ctx, "Requests").ErrorContext(ctx, "failed to load friend requests", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return friendsFrom(rows), nil
}

// Search finds profiles whose full name contains text, case-insensitively.
// The current user is never returned. A blank text returns nothing without
// calling the gateway.
func (s *FriendService) Search(ctx context.Context, text string) ([]gateway.Profile, error) {
	userID, err := s.me()
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return s.backend.ListProfiles(ctx, query.New().ILike("full_name", text).Neq("id", userID).WithLimit(SearchLimit))
}

// SendRequest asks friendID to become a friend.
func (s *FriendService) SendRequest(ctx context.Context, friendID string) error {
	userID, err := s.me()
	if err != nil {
		return err
	}
	logger := s.loggerWith(ctx, "SendRequest", "friend_id", friendID)
	if err := s.backend.CreateFriendship(ctx, gateway.Friendship{
		UserID:   userID,
		FriendID: friendID,
		Status:   gateway.FriendshipPending,
	}); err != nil {
		logger.WarnContext(ctx, "friend request failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "friend request sent")
	return nil
}

// Respond accepts or declines the request from requesterID. Accepting also
// records the reverse friendship so both users list each other.
func (s *FriendService) Respond(ctx context.Context, requesterID string, accept bool) (err error) {
	userID, err := s.me()
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Respond", "requester_id", requesterID, "accept", accept)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "friend response failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "friend request answered")
	}()

	if !accept {
		return s.backend.DeleteFriendship(ctx, requesterID, userID)
	}
	if err = s.backend.UpdateFriendship(ctx, requesterID, userID, gateway.FriendshipAccepted); err != nil {
		return err
	}
	err = s.backend.CreateFriendship(ctx, gateway.Friendship{
		UserID:   userID,
		FriendID: requesterID,
		Status:   gateway.FriendshipAccepted,
	})
	if errors.Is(err, gateway.ErrConflict) {
		err = s.backend.UpdateFriendship(ctx, userID, requesterID, gateway.FriendshipAccepted)
	}
	return err
}

// FilterFriends keeps the friends matching filter. Presence is judged against
// now on every call.
func FilterFriends(friends []Friend, filter FriendFilter, now time.Time) []Friend {
	out := make([]Friend, 0, len(friends))
	for _, friend := range friends {
		online := selectors.IsOnline(friend.LastSeen, now)
		switch {
		case filter == FilterOnline && !online:
			continue
		case filter == FilterOffline && online:
			continue
		}
		out = append(out, friend)
	}
	return out
}

func friendsFrom(rows []gateway.Friendship) []Friend {
	out := make([]Friend, len(rows))
	for i, row := range rows {
		out[i] = Friend{
			UserID:    row.Profile.ID,
			Username:  row.Profile.Username,
			FullName:  row.Profile.FullName,
			AvatarURL: row.Profile.AvatarURL,
			LastSeen:  row.Profile.LastSeen,
			Since:     row.CreatedAt,
		}
	}
	return out
}
