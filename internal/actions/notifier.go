package actions

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
)

// DefaultToastDuration is how long a toast stays up unless overridden
const DefaultToastDuration = 4 * time.Second

// UndoWindow is how long a delete stays undoable in the UI. The delete toast
// stays up for the same time.
const UndoWindow = 8 * time.Second

// Notifier surfaces outcomes to the user.
type Notifier interface {
	ShowSuccess(title, message string, opts ...ToastOption)
	ShowError(title, message string, opts ...ToastOption)
	// ShowAppError describes err by kind. retry is nil when retrying cannot help.
	ShowAppError(err error, retry func())
}

// Toast is a rendered notification
type Toast struct {
	Title    string
	Message  string
	IsError  bool
	Duration time.Duration

	// ActionLabel/OnAction attach a single button (e.g. "Retry")
	ActionLabel string
	OnAction    func()
}

// ToastOption customizes a toast
type ToastOption func(*Toast)

// WithDuration overrides how long the toast is shown
func WithDuration(d time.Duration) ToastOption {
	return func(t *Toast) { t.Duration = d }
}

// WithAction attaches an action button
func WithAction(label string, fn func()) ToastOption {
	return func(t *Toast) {
		t.ActionLabel = label
		t.OnAction = fn
	}
}

// NewToast builds a toast with opts applied over the defaults
func NewToast(title, message string, isError bool, opts ...ToastOption) Toast {
	t := Toast{Title: title, Message: message, IsError: isError, Duration: DefaultToastDuration}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Describe maps an error to a user-facing title and message
func Describe(err error) (title, message string) {
	switch domain.KindOf(err) {
	case domain.ErrorKindNone:
		return "", ""
	case domain.ErrorKindValidation:
		return "Invalid playground", detail(err, domain.ErrValidation)
	case domain.ErrorKindNotFound:
		return "Playground not found", "It may have been deleted already."
	case domain.ErrorKindStorage:
		return "Could not save", "Your changes were not stored on this device."
	default:
		return "Something went wrong", err.Error()
	}
}

// detail strips the sentinel prefix from a wrapped error
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

// LogNotifier reports outcomes to a logger. Used where no UI is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = LogNotifier{}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n LogNotifier) ShowSuccess(title, message string, _ ...ToastOption) {
	n.logger().Info(title, "message", message)
}

func (n LogNotifier) ShowError(title, message string, opts ...ToastOption) {
	t := NewToast(title, message, true, opts...)
	n.logger().Error(t.Title, "message", t.Message)
}

func (n LogNotifier) ShowAppError(err error, retry func()) {
	title, message := Describe(err)
	n.ShowError(title, message)
}
