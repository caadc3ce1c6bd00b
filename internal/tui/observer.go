package tui

import "github.com/mmcdole/swingset/internal/actions"

// ChannelNotifier adapts actions.Notifier to a channel for Bubble Tea.
type ChannelNotifier struct {
	ch chan<- actions.Toast
}

var _ actions.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a new channel-based notifier.
func NewChannelNotifier(ch chan<- actions.Toast) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

func (n *ChannelNotifier) ShowSuccess(title, message string, opts ...actions.ToastOption) {
	n.send(actions.NewToast(title, message, false, opts...))
}

func (n *ChannelNotifier) ShowError(title, message string, opts ...actions.ToastOption) {
	n.send(actions.NewToast(title, message, true, opts...))
}

func (n *ChannelNotifier) ShowAppError(err error, retry func()) {
	title, message := actions.Describe(err)
	var opts []actions.ToastOption
	if retry != nil {
		opts = append(opts, actions.WithAction("Retry", retry))
	}
	n.ShowError(title, message, opts...)
}

// send delivers t (non-blocking if channel full)
func (n *ChannelNotifier) send(t actions.Toast) {
	select {
	case n.ch <- t:
	default:
	}
}
