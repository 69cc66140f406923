package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/resumeforge/internal/domain"
	pkgkafka "github.com/utafrali/resumeforge/pkg/kafka"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered    = "resumeforge.user.registered"
	TopicUserDeleted       = "resumeforge.user.deleted"
	TopicUserPasswordReset = "resumeforge.user.password_reset"
	TopicResumePrinted     = "resumeforge.resume.printed"
)

// Aggregate type constants.
const (
	AggregateTypeUser   = "user"
	AggregateTypeResume = "resume"
)

// Source identifier for events originating from this service.
const Source = "resumeforge"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Provider string `json:"provider"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserPasswordResetData is the payload for a user.password_reset event.
type UserPasswordResetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ResumePrintedData is the payload for a resume.printed event.
type ResumePrintedData struct {
	ResumeID string `json:"resume_id"`
	UserID   string `json:"user_id"`
	URL      string `json:"url"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Username: user.Username,
		Provider: user.Provider,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, user *domain.User) error {
	data := UserDeletedData{
		ID:    user.ID,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserDeleted, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserDeleted, event); err != nil {
		return fmt.Errorf("publish user.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.deleted event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishUserPasswordReset publishes a user.password_reset event.
func (p *Producer) PublishUserPasswordReset(ctx context.Context, userID, email string) error {
	data := UserPasswordResetData{
		UserID: userID,
		Email:  email,
	}

	event, err := pkgkafka.NewEvent(TopicUserPasswordReset, userID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.password_reset event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserPasswordReset, event); err != nil {
		return fmt.Errorf("publish user.password_reset event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.password_reset event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishResumePrinted publishes a resume.printed event.
func (p *Producer) PublishResumePrinted(ctx context.Context, resumeID, userID, url string) error {
	data := ResumePrintedData{
		ResumeID: resumeID,
		UserID:   userID,
		URL:      url,
	}

	event, err := pkgkafka.NewEvent(TopicResumePrinted, resumeID, AggregateTypeResume, Source, data)
	if err != nil {
		return fmt.Errorf("create resume.printed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicResumePrinted, event); err != nil {
		return fmt.Errorf("publish resume.printed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published resume.printed event",
		slog.String("resume_id", resumeID),
		slog.String("user_id", userID),
	)

	return nil
}
