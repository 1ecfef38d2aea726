// Package contact forwards contact form submissions to the email API and
// keeps a copy in the contact log table.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/alextreichler/portfolio/internal/models"
)

const (
	BannerDuration = 5 * time.Second

	SuccessMessage = "TRANSMISSION SUCCESSFUL. I WILL BE IN TOUCH."
	FailureMessage = "TRANSMISSION FAILED. PLEASE TRY AGAIN."
)

var ErrInvalid = errors.New("contact: invalid submission")

// Sender delivers the message through the transactional email service.
type Sender interface {
	Send(ctx context.Context, params map[string]string) error
}

// Log is the backend table the message is mirrored into.
type Log interface {
	InsertContactMessage(ctx context.Context, m *models.ContactMessage) error
}

type Form struct {
	Name    string
	Email   string
	Message string
}

var emailRegex = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Validate returns one message per missing or malformed field.
func (f Form) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required."
	}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email is required."
	} else if !emailRegex.MatchString(strings.TrimSpace(f.Email)) {
		errs["email"] = "Please enter a valid email address."
	}
	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "Message is required."
	}
	return errs
}

// Banner is the status line shown above the submit button. A zero
// ExpiresAt means it stays until the next submission.
type Banner struct {
	Text      string
	Failed    bool
	ExpiresAt time.Time
}

func (b Banner) Visible(now time.Time) bool {
	if b.Text == "" {
		return false
	}
	return b.ExpiresAt.IsZero() || now.Before(b.ExpiresAt)
}

// Result is what the page should show after a submission: the banner and
// the form values to put back in the inputs.
type Result struct {
	Banner Banner
	Form   Form
	Errors map[string]string
}

type Flow struct {
	Sender Sender
	Log    Log
	Now    func() time.Time
}

func NewFlow(sender Sender, log Log) *Flow {
	return &Flow{Sender: sender, Log: log, Now: time.Now}
}

// Submit sends f. On success the form comes back empty with a success banner
// that expires after BannerDuration. On any failure the form is kept.
func (fl *Flow) Submit(ctx context.Context, f Form) (Result, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return Result{Form: f, Errors: errs}, ErrInvalid
	}

	params := map[string]string{
		"name":    f.Name,
		"email":   f.Email,
		"message": f.Message,
	}
	if err := fl.Sender.Send(ctx, params); err != nil {
		slog.Error("Contact email failed", "error", err)
		return Result{
			Banner: Banner{Text: FailureMessage, Failed: true},
			Form:   f,
		}, fmt.Errorf("send contact email: %w", err)
	}

	if fl.Log != nil {
		msg := &models.ContactMessage{Name: f.Name, Email: f.Email, Message: f.Message}
		if err := fl.Log.InsertContactMessage(ctx, msg); err != nil {
			slog.Error("Database log failed", "error", err)
		}
	}

	return Result{
		Banner: Banner{Text: SuccessMessage, ExpiresAt: fl.Now().Add(BannerDuration)},
	}, nil
}
