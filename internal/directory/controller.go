package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
)

// Selection list identifiers as rendered on the page
const (
	SelectCandidate     = "candidate-select"
	SelectRecruiter     = "recruiter-select"
	SelectUser          = "user-select"
	SelectViewUser      = "view-user-select"
	SelectInterviewUser = "interview-user-select"
)

// API is the subset of the backend client used by the directory
type API interface {
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
}

// Notifier raises user-facing toasts
type Notifier interface {
	Success(msg string) notify.Toast
	Error(msg string) notify.Toast
}

// Option is one entry of a selection list
type Option struct {
	Value int64
	Label string
}

// Controller manages the user directory
type Controller struct {
	api      API
	roster   *Roster
	notifier Notifier
	logger   *slog.Logger

	mu         sync.RWMutex
	selections map[string][]Option
	activeRole models.Role
}

// NewController creates a directory controller over roster
func NewController(api API, roster *Roster, notifier Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		api:        api,
		roster:     roster,
		notifier:   notifier,
		logger:     logger,
		activeRole: models.RoleCandidate,
	}
	c.RefreshSelections()
	return c
}

// Roster returns the shared roster
func (c *Controller) Roster() *Roster {
	return c.roster
}

// ListUsers fetches every user of one role. The roster is not modified.
func (c *Controller) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown user type: %s", role))
	}
	users, err := c.api.ListUsers(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s users: %w", role, err)
	}
	return users, nil
}

// LoadAll reloads both role collections. The roster is replaced only when
// every fetch succeeds; a failure is shown to the operator.
func (c *Controller) LoadAll(ctx context.Context) error {
	if err := c.Sync(ctx); err != nil {
		c.notifier.Error("Failed to load users. Please try again.")
		return err
	}
	return nil
}

// Sync reloads both role collections like LoadAll but only logs a failure.
// Page renders use it so an unreachable backend does not pile up toasts.
func (c *Controller) Sync(ctx context.Context) error {
	candidates, err := c.ListUsers(ctx, models.RoleCandidate)
	if err != nil {
		c.logger.Error("failed to load users", "role", models.RoleCandidate, "error", err)
		return err
	}
	recruiters, err := c.ListUsers(ctx, models.RoleRecruiter)
	if err != nil {
		c.logger.Error("failed to load users", "role", models.RoleRecruiter, "error", err)
		return err
	}

	c.roster.Replace(candidates, recruiters)
	c.RefreshSelections()

	c.logger.Info("users loaded", "candidates", len(candidates), "recruiters", len(recruiters))
	return nil
}

// CreateUser registers a user with the backend and adds the returned record
// to its role's collection
func (c *Controller) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		c.notifier.Error(err.Error())
		return nil, err
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	user, err := c.api.CreateUser(ctx, req)
	if err != nil {
		c.logger.Error("failed to create user", "email", req.Email, "error", err)
		c.notifier.Error("Failed to create user. Please try again.")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !user.Role.Valid() {
		user.Role = req.Role
	}

	c.roster.Add(*user)
	c.RefreshSelections()

	c.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	name := user.Name
	if name == "" {
		name = req.Name
	}
	c.notifier.Success(fmt.Sprintf("%s added successfully!", name))
	return user, nil
}

// RefreshSelections rebuilds every selection list from the roster
func (c *Controller) RefreshSelections() {
	candidates := toOptions(c.roster.Users(models.RoleCandidate))
	recruiters := toOptions(c.roster.Users(models.RoleRecruiter))
	everyone := append(append([]Option(nil), candidates...), recruiters...)

	selections := map[string][]Option{
		SelectCandidate:     candidates,
		SelectRecruiter:     recruiters,
		SelectUser:          everyone,
		SelectViewUser:      append([]Option(nil), everyone...),
		SelectInterviewUser: append([]Option(nil), everyone...),
	}

	c.mu.Lock()
	c.selections = selections
	c.mu.Unlock()
}

// Selections returns the current selection lists keyed by list identifier
func (c *Controller) Selections() map[string][]Option {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]Option, len(c.selections))
	for k, v := range c.selections {
		out[k] = append([]Option(nil), v...)
	}
	return out
}

// Users returns the roster entries of one role
func (c *Controller) Users(role models.Role) []models.User {
	return c.roster.Users(role)
}

// ActiveRole is the role whose users are listed on the page
func (c *Controller) ActiveRole() models.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeRole
}

// SetActiveRole switches the listed role; unknown roles are ignored
func (c *Controller) SetActiveRole(role models.Role) {
	if !role.Valid() {
		return
	}
	c.mu.Lock()
	c.activeRole = role
	c.mu.Unlock()
}

func toOptions(users []models.User) []Option {
	out := make([]Option, 0, len(users))
	for _, u := range users {
		out = append(out, Option{
			Value: u.ID,
			Label: fmt.Sprintf("%s (%s)", u.Name, u.Role),
		})
	}
	return out
}
