// Package usersvc implements Service A: the user service backing
// /service-a/* routes on the gateway. It exposes two operations, list and
// create, over a narrow store port. Store failures are logged and re-raised
// unchanged; the service performs no recovery and no retries.
package usersvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gateway-services/internal/domain/user"
)

// ServiceName is the name the user service registers its patterns under.
const ServiceName = "userservice"

// Repository is the narrow find/insert port onto the user store. Insert
// returns the persisted record including the store-assigned identifier.
type Repository interface {
	FindAll(ctx context.Context) ([]user.User, error)
	Insert(ctx context.Context, u user.User) (user.User, error)
}

// Service implements the user operations.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates the user service with an explicit store and logger.
func New(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, validate: validator.New()}
}

// ListUsers returns every record in the store, in store order. No
// pagination, no filtering; the store is re-queried on every call.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	s.log.Info("Service A: Fetching all users from database")

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error(fmt.Sprintf("Service A: Error fetching users from database - %s", err))
		return nil, err
	}

	s.log.Info(fmt.Sprintf("Service A: Successfully fetched %d users from database", len(users)))
	return users, nil
}

// CreateUser persists a new record and returns it with the identifier the
// store assigned. Email uniqueness is deliberately not enforced here; the
// store's default behavior governs duplicates.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (user.User, error) {
	s.log.Info(fmt.Sprintf("Service A: Creating new user - %s (%s)", req.Name, req.Email))

	if err := s.validate.Struct(req); err != nil {
		err = formatValidationError(err)
		s.log.Error(fmt.Sprintf("Service A: Error creating user %s - %s", req.Name, err))
		return user.User{}, err
	}

	created, err := s.repo.Insert(ctx, user.User{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		s.log.Error(fmt.Sprintf("Service A: Error creating user %s - %s", req.Name, err))
		return user.User{}, err
	}

	s.log.Info(fmt.Sprintf("Service A: Successfully created user - %s with ID %s", created.Name, created.ID))
	return created, nil
}

// formatValidationError converts validator.ValidationErrors into a
// human-readable error message.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, ", "))
}
