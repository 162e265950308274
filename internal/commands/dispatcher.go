// Package commands routes slash-prefixed platform commands to session state
// operations, keeping conversational input on the session manager path.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SessionState exposes the per-user session reads and mutations commands need.
//
// Implemented by the session manager; commands never touch the reply cache or
// duplicate guard beyond the read used for /stats.
type SessionState interface {
	// ClearHistory resets one user's transcript to the persona turn only.
	ClearHistory(userID string)
	// HistoryLen reports the current transcript length for one user.
	HistoryLen(userID string) int
	// CachedReplyCount reports unexpired cached replies for one user.
	CachedReplyCount(userID string) int
}

const (
	commandStart = "/start"
	commandHelp  = "/help"
	commandClear = "/clear"
	commandStats = "/stats"
)

const defaultGreeting = "Hello! Send me a message and I will reply."

const helpText = `Available commands:

/start
show the greeting message

/help
show this command reference

/clear
forget our conversation so far

/stats
show session statistics`

// Option mutates dispatcher construction inputs.
type Option func(*Dispatcher)

// WithLogger injects structured logging for dispatched commands.
func WithLogger(logger *slog.Logger) Option {
	return func(dispatcher *Dispatcher) {
		if logger != nil {
			dispatcher.logger = logger
		}
	}
}

// WithGreeting overrides the /start greeting text.
func WithGreeting(greeting string) Option {
	return func(dispatcher *Dispatcher) {
		if strings.TrimSpace(greeting) != "" {
			dispatcher.greeting = greeting
		}
	}
}

// Dispatcher resolves slash-prefixed commands into reply text.
type Dispatcher struct {
	sessions SessionState
	logger   *slog.Logger
	greeting string
}

// NewDispatcher creates one command dispatcher instance.
func NewDispatcher(sessions SessionState, options ...Option) (*Dispatcher, error) {
	if sessions == nil {
		return nil, fmt.Errorf("new command dispatcher: nil session state")
	}

	dispatcher := &Dispatcher{
		sessions: sessions,
		logger:   slog.Default(),
		greeting: defaultGreeting,
	}
	for _, option := range options {
		option(dispatcher)
	}

	return dispatcher, nil
}

// IsCommand reports whether trimmed input uses platform command syntax.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// Dispatch resolves one command into reply text.
//
// Unrecognized commands return handled=false with no reply; callers decide
// whether to stay silent or forward elsewhere.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, text string) (reply string, handled bool) {
	name := commandName(text)

	switch name {
	case commandStart:
		reply = d.greeting
	case commandHelp:
		reply = helpText
	case commandClear:
		d.sessions.ClearHistory(userID)
		reply = "Conversation history cleared."
	case commandStats:
		reply = fmt.Sprintf(
			"History turns: %d\nCached replies: %d",
			d.sessions.HistoryLen(userID),
			d.sessions.CachedReplyCount(userID),
		)
	default:
		return "", false
	}

	d.logger.InfoContext(ctx, "dispatched command", "user_id", userID, "command", name)

	return reply, true
}

func commandName(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return ""
	}

	name := strings.ToLower(fields[0])
	// Telegram clients may address commands as /clear@botname in groups.
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}

	return name
}
