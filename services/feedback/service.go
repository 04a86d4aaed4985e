package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"homeservice/database"
	feedbackRepo "homeservice/database/repository/feedback"
	"homeservice/metrics"
	"homeservice/models"
	"homeservice/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	summaryTTL   = 10 * time.Minute
	recentLimit  = 5
	CodeNotReady = "BOOKING_NOT_COMPLETED"
)

type FeedbackService interface {
	Submit(ctx context.Context, identity models.Identity, req models.SubmitFeedbackRequest) (*models.Feedback, error)
	Update(ctx context.Context, identity models.Identity, feedbackID string, req models.UpdateFeedbackRequest) (*models.Feedback, error)
	GetByBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Feedback, error)
	ProviderSummary(ctx context.Context, providerID string) (*models.ProviderFeedbackSummary, error)
}

// BookingLookup loads the booking a feedback refers to.
type BookingLookup interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// RatingWriter stores the recomputed catalog rating.
type RatingWriter interface {
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

type DefaultFeedbackService struct {
	Repo     feedbackRepo.FeedbackRepository
	Bookings BookingLookup
	Ratings  RatingWriter
	Cache    utils.JSONCache
	Logger   *zap.Logger
	Now      func() time.Time
}

func (s *DefaultFeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit records the one feedback a customer may leave for a completed booking.
func (s *DefaultFeedbackService) Submit(ctx context.Context, identity models.Identity, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := validateRatings(req.ProviderRating, req.ServiceRating); err != nil {
		return nil, err
	}

	b, err := s.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("BOOKING_NOT_FOUND", "Booking not found")
		}
		return nil, utils.NewInternalError("failed to load booking", err)
	}
	if b.CustomerID != identity.UserID {
		return nil, utils.NewForbiddenError("You can only review your own bookings")
	}
	if b.Status != models.StatusCompleted {
		return nil, utils.NewRuleError(CodeNotReady, "bookingId", "Feedback opens once the booking is completed")
	}

	if _, err := s.Repo.GetByBookingID(ctx, b.ID); err == nil {
		return nil, duplicateError()
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, utils.NewInternalError("failed to check existing feedback", err)
	}

	now := s.now()
	f := &models.Feedback{
		ID:              uuid.New().String(),
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		ProviderID:      b.ProviderID,
		ServiceID:       b.ServiceID,
		ProviderRating:  req.ProviderRating,
		ProviderComment: strings.TrimSpace(req.ProviderComment),
		ServiceRating:   req.ServiceRating,
		ServiceComment:  strings.TrimSpace(req.ServiceComment),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		// Lost the race to a concurrent submit; the unique index decides.
		if errors.Is(err, database.ErrDuplicate) {
			return nil, duplicateError()
		}
		return nil, utils.NewInternalError("failed to save feedback", err)
	}

	metrics.RecordFeedback("submitted")
	s.Logger.Info("Feedback submitted", zap.String("feedbackID", f.ID), zap.String("bookingID", f.BookingID))
	s.afterChange(ctx, f)
	return f, nil
}

// Update replaces the ratings and comments. Identity fields never change.
func (s *DefaultFeedbackService) Update(ctx context.Context, identity models.Identity, feedbackID string, req models.UpdateFeedbackRequest) (*models.Feedback, error) {
	if err := validateRatings(req.ProviderRating, req.ServiceRating); err != nil {
		return nil, err
	}
	f, err := s.load(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if f.CustomerID != identity.UserID {
		return nil, utils.NewForbiddenError("You can only edit your own feedback")
	}

	f.ProviderRating = req.ProviderRating
	f.ProviderComment = strings.TrimSpace(req.ProviderComment)
	f.ServiceRating = req.ServiceRating
	f.ServiceComment = strings.TrimSpace(req.ServiceComment)
	f.IsEdited = true
	f.UpdatedAt = s.now()

	if err := s.Repo.UpdateRatings(ctx, f); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("FEEDBACK_NOT_FOUND", "Feedback not found")
		}
		return nil, utils.NewInternalError("failed to update feedback", err)
	}

	metrics.RecordFeedback("edited")
	s.afterChange(ctx, f)
	return f, nil
}

func (s *DefaultFeedbackService) GetByBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Feedback, error) {
	f, err := s.Repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("FEEDBACK_NOT_FOUND", "No feedback for this booking yet")
		}
		return nil, utils.NewInternalError("failed to load feedback", err)
	}
	if !identity.IsAdmin() && f.CustomerID != identity.UserID && f.ProviderID != identity.UserID {
		return nil, utils.NewForbiddenError("You do not have access to this feedback")
	}
	return f, nil
}

// ProviderSummary is served from cache when possible.
func (s *DefaultFeedbackService) ProviderSummary(ctx context.Context, providerID string) (*models.ProviderFeedbackSummary, error) {
	key := summaryKey(providerID)
	if s.Cache != nil {
		var cached models.ProviderFeedbackSummary
		if ok, err := s.Cache.Get(ctx, key, &cached); err == nil && ok {
			return &cached, nil
		} else if err != nil {
			s.Logger.Warn("Feedback summary cache read failed", zap.String("providerID", providerID), zap.Error(err))
		}
	}

	records, err := s.Repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, utils.NewInternalError("failed to load provider feedback", err)
	}

	summary := &models.ProviderFeedbackSummary{
		ProviderID: providerID,
		Provider:   Summarize(ProviderRatings(records)),
		Service:    Summarize(ServiceRatings(records)),
		Trend:      MonthlyTrend(records, s.now(), DefaultTrendMonths),
		Recent:     records,
	}
	if len(summary.Recent) > recentLimit {
		summary.Recent = summary.Recent[:recentLimit]
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, summary, summaryTTL); err != nil {
			s.Logger.Warn("Feedback summary cache write failed", zap.String("providerID", providerID), zap.Error(err))
		}
	}
	return summary, nil
}

// afterChange refreshes the service rating and drops the cached provider summary.
// Neither failure undoes the feedback write.
func (s *DefaultFeedbackService) afterChange(ctx context.Context, f *models.Feedback) {
	if s.Ratings != nil && f.ServiceID != "" {
		avg, count, err := s.Repo.ServiceRatingStats(ctx, f.ServiceID)
		if err == nil {
			err = s.Ratings.UpdateRating(ctx, f.ServiceID, avg, count)
		}
		if err != nil {
			s.Logger.Error("Service rating refresh failed", zap.String("serviceID", f.ServiceID), zap.Error(err))
		}
	}
	if s.Cache != nil && f.ProviderID != "" {
		if err := s.Cache.Delete(ctx, summaryKey(f.ProviderID)); err != nil {
			s.Logger.Warn("Feedback summary cache invalidation failed", zap.String("providerID", f.ProviderID), zap.Error(err))
		}
	}
}

func (s *DefaultFeedbackService) load(ctx context.Context, id string) (*models.Feedback, error) {
	f, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("FEEDBACK_NOT_FOUND", "Feedback not found")
		}
		return nil, utils.NewInternalError("failed to load feedback", err)
	}
	return f, nil
}

func validateRatings(provider, service int) error {
	if provider < 1 || provider > 5 {
		return utils.NewValidationError("providerRating", "providerRating must be between 1 and 5")
	}
	if service < 1 || service > 5 {
		return utils.NewValidationError("serviceRating", "serviceRating must be between 1 and 5")
	}
	return nil
}

func duplicateError() error {
	return utils.NewConflictError(utils.CodeDuplicateFeedback, "Feedback has already been submitted for this booking")
}

func summaryKey(providerID string) string {
	return "provider:" + providerID
}
