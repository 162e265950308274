package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"yagami/pkg/yagami"
)

// DefaultRequestTimeout bounds how long one generation call may run.
const DefaultRequestTimeout = 60 * time.Second

// OutcomeKind classifies how one inbound message was resolved.
type OutcomeKind string

const (
	// OutcomeIgnored identifies empty input dropped without any state change.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeRejectDuplicate identifies a repeat message inside the cooldown.
	OutcomeRejectDuplicate OutcomeKind = "reject_duplicate"
	// OutcomeDeliverCached identifies a reply served from the reply cache.
	OutcomeDeliverCached OutcomeKind = "deliver_cached"
	// OutcomeDeliverGenerated identifies a freshly generated reply.
	OutcomeDeliverGenerated OutcomeKind = "deliver_generated"
	// OutcomeDeliverError identifies a failed generation attempt.
	OutcomeDeliverError OutcomeKind = "deliver_error"
)

// Outcome is the resolved action for one inbound message.
type Outcome struct {
	// Kind classifies the resolution.
	Kind OutcomeKind
	// Reply carries the reply body for cached and generated outcomes.
	Reply string
	// TokenCount reports generation token usage for generated outcomes.
	TokenCount int
	// Err carries the generation failure cause for error outcomes.
	Err error
}

// Option mutates manager construction inputs.
type Option func(*Manager)

// WithLogger injects structured logging for handled messages.
func WithLogger(logger *slog.Logger) Option {
	return func(manager *Manager) {
		if logger != nil {
			manager.logger = logger
		}
	}
}

// WithClock injects a time source for TTL and cooldown decisions.
func WithClock(clock func() time.Time) Option {
	return func(manager *Manager) {
		if clock != nil {
			manager.clock = clock
		}
	}
}

// WithRequestTimeout bounds each generation call.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(manager *Manager) {
		if timeout > 0 {
			manager.requestTimeout = timeout
		}
	}
}

// Config carries manager construction inputs.
type Config struct {
	// Persona is the fixed system turn content.
	Persona string
	// Model identifies which provider model generates replies.
	Model string
	// MaxPairs caps retained user/assistant turn pairs per user.
	MaxPairs int
	// CacheTTL bounds reply cache entry lifetime.
	CacheTTL time.Duration
	// DupWindow is the duplicate rejection cooldown.
	DupWindow time.Duration
	// MaxOutputTokens optionally bounds generated output token count.
	MaxOutputTokens int
	// Temperature optionally controls output randomness.
	Temperature float64
}

// Validate checks manager construction inputs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Persona) == "" {
		return fmt.Errorf("validate session config: missing persona")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("validate session config: missing model")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("validate session config: max_output_tokens must be >= 0")
	}
	if c.Temperature < 0 {
		return fmt.Errorf("validate session config: temperature must be >= 0")
	}

	return nil
}

// Manager is the single entry point invoked per inbound non-command message.
//
// It owns all per-user session state for the process lifetime: the duplicate
// guard, the reply cache, and the conversation history. Handling for one user
// is serialized by a per-user lock held across the generation call, so a
// message started first appends its user turn first. Different users never
// contend on the same lock.
type Manager struct {
	cfg       Config
	generator yagami.Generator
	cache     *ReplyCache
	guard     *DuplicateGuard
	history   *History

	logger         *slog.Logger
	clock          func() time.Time
	requestTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates one session cache manager instance.
func NewManager(cfg Config, generator yagami.Generator, options ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new session manager: %w", err)
	}
	if generator == nil {
		return nil, fmt.Errorf("new session manager: nil generator")
	}

	manager := &Manager{
		cfg:            cfg,
		generator:      generator,
		cache:          NewReplyCache(cfg.CacheTTL),
		guard:          NewDuplicateGuard(cfg.DupWindow),
		history:        NewHistory(cfg.Persona, cfg.MaxPairs),
		logger:         slog.Default(),
		clock:          time.Now,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, option := range options {
		option(manager)
	}

	return manager, nil
}

// Handle resolves one inbound user message into a delivery outcome.
//
// Command-prefixed input must be routed to the command dispatcher before this
// point; Handle treats all input as conversational text.
func (m *Manager) Handle(ctx context.Context, userID string, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Kind: OutcomeIgnored}
	}

	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := m.clock()
	if m.guard.CheckAndUpdate(userID, text, now) {
		m.logger.InfoContext(ctx, "rejected duplicate message", "user_id", userID)
		return Outcome{Kind: OutcomeRejectDuplicate}
	}

	if reply, hit := m.cache.Lookup(userID, text, now); hit {
		// A cache hit is not conversational progress: history stays
		// untouched, at the cost of context drift on repeated questions.
		m.logger.InfoContext(ctx, "served cached reply", "user_id", userID)
		return Outcome{Kind: OutcomeDeliverCached, Reply: reply}
	}

	m.history.GetOrInit(userID)
	m.history.Append(userID, yagami.UserTurn(text))

	result, err := m.generate(ctx, userID)
	if err != nil {
		// The user turn stays appended; the next attempt naturally
		// includes the unanswered prompt as context.
		m.logger.ErrorContext(ctx, "generation failed", "user_id", userID, "error", err)
		return Outcome{Kind: OutcomeDeliverError, Err: err}
	}

	m.history.Append(userID, yagami.AssistantTurn(result.Text))
	m.cache.Store(userID, text, result.Text, m.clock())

	m.logger.InfoContext(ctx,
		"generated reply",
		"user_id", userID,
		"history_len", m.history.Len(userID),
		"token_count", result.TokenCount,
	)

	return Outcome{
		Kind:       OutcomeDeliverGenerated,
		Reply:      result.Text,
		TokenCount: result.TokenCount,
	}
}

// ClearHistory resets one user's transcript to the persona turn only.
//
// Reply cache and duplicate guard state for the user are left untouched.
func (m *Manager) ClearHistory(userID string) {
	m.history.Clear(userID)
}

// HistoryLen reports the current transcript length for one user.
func (m *Manager) HistoryLen(userID string) int {
	return m.history.Len(userID)
}

// CachedReplyCount reports unexpired reply cache entries for one user.
func (m *Manager) CachedReplyCount(userID string) int {
	return m.cache.CountForUser(userID, m.clock())
}

func (m *Manager) generate(ctx context.Context, userID string) (yagami.GenerateResult, error) {
	reqCtx := ctx
	cancel := func() {}
	if m.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, m.requestTimeout)
	}
	defer cancel()

	req := yagami.GenerateRequest{
		Model:           m.cfg.Model,
		Turns:           m.history.GetOrInit(userID),
		MaxOutputTokens: m.cfg.MaxOutputTokens,
		Temperature:     m.cfg.Temperature,
	}
	if err := req.Validate(); err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("session generate validate request: %w", err)
	}

	result, err := m.generator.Generate(reqCtx, req)
	if err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("session generate: %w", err)
	}

	result.Text = strings.TrimSpace(result.Text)
	if result.Text == "" {
		return yagami.GenerateResult{}, fmt.Errorf("session generate: %w", yagami.ErrEmptyReply)
	}

	return result, nil
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, exists := m.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		if m.locks == nil {
			m.locks = make(map[string]*sync.Mutex)
		}
		m.locks[userID] = lock
	}

	return lock
}
