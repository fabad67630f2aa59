package ratinghandlers

import (
	"errors"
	"log/slog"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

var errNilPayload = errors.New("payload cannot be nil")

// RatingHandlers implements the Handlers interface.
type RatingHandlers struct {
	service ratingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRatingHandlers creates a new RatingHandlers instance.
func NewRatingHandlers(
	service ratingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &RatingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// single wraps one outgoing message.
func single(topic string, payload any) []handlerwrapper.Result {
	return []handlerwrapper.Result{{Topic: topic, Payload: payload}}
}

// failureReason renders a domain failure for the user.
func failureReason(err *error) string {
	if err == nil || *err == nil {
		return "unknown failure"
	}
	return (*err).Error()
}

func adminFailed(op, requestedBy string, userID ratingdomain.RunnerID, err *error) []handlerwrapper.Result {
	return single(ratingevents.AdminOperationFailedV1, &ratingevents.AdminOperationFailedPayloadV1{
		Operation:   op,
		RequestedBy: requestedBy,
		UserID:      userID,
		Reason:      failureReason(err),
	})
}
