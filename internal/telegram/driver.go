package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gotdtelegram "github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

// DriverConfig holds the Telegram API credentials for one bot account.
type DriverConfig struct {
	// AppID is the api_id issued for the application.
	AppID int
	// AppHash is the api_hash issued for the application.
	AppHash string
	// BotToken authenticates the bot account on first run.
	BotToken string
}

// Validate reports credential problems before any network dial.
func (c DriverConfig) Validate() error {
	if c.AppID <= 0 {
		return fmt.Errorf("validate telegram config: app_id must be positive")
	}
	if strings.TrimSpace(c.AppHash) == "" {
		return fmt.Errorf("validate telegram config: missing app_hash")
	}
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("validate telegram config: missing bot_token")
	}

	return nil
}

// InboundHandler consumes one decoded inbound message. Handlers run on their
// own goroutine; per-user ordering is the session layer's concern.
type InboundHandler func(ctx context.Context, inbound Inbound) error

// Driver owns the gotd client lifecycle for one bot account and feeds decoded
// private-chat messages to the configured handler.
type Driver struct {
	client  *gotdtelegram.Client
	token   string
	peers   *PeerCache
	handler InboundHandler
	logger  *slog.Logger
}

// DriverOption configures optional driver behavior.
type DriverOption func(*Driver)

// WithDriverLogger overrides the default discard logger.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver builds a Telegram driver around one bot account.
func NewDriver(
	cfg DriverConfig,
	peers *PeerCache,
	handler InboundHandler,
	opts ...DriverOption,
) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new telegram driver: %w", err)
	}
	if peers == nil {
		return nil, fmt.Errorf("new telegram driver: nil peer cache")
	}
	if handler == nil {
		return nil, fmt.Errorf("new telegram driver: nil inbound handler")
	}

	driver := &Driver{
		token:   strings.TrimSpace(cfg.BotToken),
		peers:   peers,
		handler: handler,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(driver)
	}

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewMessage(driver.onNewMessage)

	driver.client = gotdtelegram.NewClient(cfg.AppID, strings.TrimSpace(cfg.AppHash), gotdtelegram.Options{
		UpdateHandler: dispatcher,
	})

	return driver, nil
}

// API exposes the raw Telegram RPC client for the outbound sender.
func (d *Driver) API() *tg.Client {
	return d.client.API()
}

// Run connects, signs the bot in when the session is fresh, and blocks
// consuming updates until the context is canceled.
func (d *Driver) Run(ctx context.Context) error {
	if d == nil || d.client == nil {
		return fmt.Errorf("telegram driver run: driver is not initialized")
	}
	if ctx == nil {
		return fmt.Errorf("telegram driver run: nil context")
	}

	return d.client.Run(ctx, func(ctx context.Context) error {
		status, err := d.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("telegram auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := d.client.Auth().Bot(ctx, d.token); err != nil {
				return fmt.Errorf("telegram bot sign-in: %w", err)
			}
		}

		self, err := d.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("telegram fetch self: %w", err)
		}
		d.logger.InfoContext(ctx, "telegram driver connected",
			"bot_id", self.ID,
			"username", self.Username,
		)

		<-ctx.Done()

		return ctx.Err()
	})
}

func (d *Driver) onNewMessage(ctx context.Context, entities tg.Entities, update *tg.UpdateNewMessage) error {
	d.peers.RememberUsers(entities.Users)

	inbound, accepted := DecodeNewMessage(entities, update)
	if !accepted {
		return nil
	}

	// Handlers run detached so one user's generation latency does not stall
	// the update loop for everyone else.
	go func() {
		if err := d.handler(ctx, inbound); err != nil {
			d.logger.ErrorContext(ctx, "inbound handler failed",
				"user_id", inbound.UserID,
				"error", err,
			)
		}
	}()

	return nil
}
