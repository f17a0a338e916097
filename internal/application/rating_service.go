package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

// AnonymousReviewer names reviewers whose profile has no full name.
const AnonymousReviewer = "Anonymous"

// RatingBackend is the part of the gateway the rating service needs.
type RatingBackend interface {
	gateway.Ratings
	gateway.Aggregates
}

// Review is one rating as shown to users.
type Review struct {
	UserID       string
	ReviewerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

// RatingSummary is everything shown about an event's ratings.
type RatingSummary struct {
	// UserRating is the current user's score, nil when they have not rated.
	UserRating *int
	// Average is nil when nobody has rated the event.
	Average *float64
	Reviews []Review
}

func (s RatingSummary) clone() RatingSummary {
	out := RatingSummary{Reviews: make([]Review, len(s.Reviews))}
	copy(out.Reviews, s.Reviews)
	if s.UserRating != nil {
		v := *s.UserRating
		out.UserRating = &v
	}
	if s.Average != nil {
		v := *s.Average
		out.Average = &v
	}
	return out
}

// RatingService loads and submits event ratings.
type RatingService struct {
	backend RatingBackend
	session SessionSource
	cache   *summaryCache
	logger  *slog.Logger
}

// NewRatingService constructs a RatingService. Summaries are cached for
// cacheTTL; zero selects the default.
func NewRatingService(backend RatingBackend, session SessionSource, now func() time.Time, cacheTTL time.Duration) *RatingService {
	return NewRatingServiceWithLogger(backend, session, now, cacheTTL, nil)
}

// NewRatingServiceWithLogger constructs a RatingService with a specified logger.
func NewRatingServiceWithLogger(backend RatingBackend, session SessionSource, now func() time.Time, cacheTTL time.Duration, logger *slog.Logger) *RatingService {
	return &RatingService{
		backend: backend,
		session: session,
		cache:   newSummaryCache(cacheTTL, 0, now),
		logger:  defaultLogger(logger),
	}
}

func (s *RatingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RatingService", operation, attrs...)
}

// Load returns the rating summary of an event from the current user's point
// of view. Reviews are ordered newest first.
func (s *RatingService) Load(ctx context.Context, eventID string) (summary RatingSummary, err error) {
	if s == nil || s.backend == nil {
		err = fmt.Errorf("RatingService is not configured")
		return
	}

	userID := s.session.userID()
	key := eventID + "|" + userID
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	logger := s.loggerWith(ctx, "Load", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load ratings", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var ratings []gateway.Rating
	ratings, err = s.backend.ListRatings(ctx, eventID, query.New().Order("created_at", true))
	if err != nil {
		return
	}

	summary.Average, err = s.backend.CallScalar(ctx, gateway.AverageEventRating, map[string]string{"event_id": eventID})
	if err != nil {
		return
	}

	summary.Reviews = make([]Review, 0, len(ratings))
	for _, rating := range ratings {
		if userID != "" && rating.UserID == userID {
			score := rating.Rating
			summary.UserRating = &score
		}
		name := strings.TrimSpace(rating.ReviewerName)
		if name == "" {
			name = AnonymousReviewer
		}
		summary.Reviews = append(summary.Reviews, Review{
			UserID:       rating.UserID,
			ReviewerName: name,
			Rating:       rating.Rating,
			Comment:      rating.Comment,
			CreatedAt:    rating.CreatedAt,
		})
	}

	s.cache.Store(key, summary)
	return summary.clone(), nil
}

// Submit records the current user's rating, replacing any earlier one, and
// returns the refreshed summary.
func (s *RatingService) Submit(ctx context.Context, eventID string, rating int, comment string) (RatingSummary, error) {
	if s == nil || s.backend == nil {
		return RatingSummary{}, fmt.Errorf("RatingService is not configured")
	}

	logger := s.loggerWith(ctx, "Submit", "event_id", eventID, "rating", rating)
	userID := s.session.userID()
	if userID == "" {
		return RatingSummary{}, ErrUnauthorized
	}
	if rating < 1 || rating > 5 {
		vErr := &ValidationError{}
		vErr.add("rating", "rating must be between 1 and 5")
		return RatingSummary{}, vErr
	}

	if _, err := s.backend.UpsertRating(ctx, gateway.Rating{
		EventID: eventID,
		UserID:  userID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to submit rating", "error", err, "error_kind", ErrorKind(err))
		return RatingSummary{}, err
	}
	logger.InfoContext(ctx, "rating submitted")

	s.cache.InvalidatePrefix(eventID + "|")
	return s.Load(ctx, eventID)
}
