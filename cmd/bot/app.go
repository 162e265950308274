package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"yagami/internal/commands"
	"yagami/internal/session"
	"yagami/internal/telegram"
	"yagami/pkg/llm"
	geminiprovider "yagami/pkg/llm/providers/gemini"
	openaiprovider "yagami/pkg/llm/providers/openai"
	"yagami/pkg/yagami"
)

const (
	envConfigFile           = "YAGAMI_CONFIG_FILE"
	defaultConfigFilePath   = "config/bot.json"
	alternateConfigFilePath = "bin/config/bot.json"

	envTelegramAppID   = "TELEGRAM_APP_ID"
	envTelegramAppHash = "TELEGRAM_APP_HASH"
	envTelegramToken   = "TELEGRAM_BOT_TOKEN"

	envGroqAPIKey   = "GROQ_API_KEY"
	envOpenAIAPIKey = "OPENAI_API_KEY"
	envGeminiAPIKey = "GEMINI_API_KEY"

	providerGroq   = "groq"
	providerOpenAI = "openai"
	providerGemini = "gemini"

	defaultProvider        = providerGroq
	defaultModel           = "llama-3.1-8b-instant"
	defaultPersonaFile     = "persona.txt"
	defaultMaxOutputTokens = 164
	defaultTemperature     = 0.8
	defaultGroqBaseURL     = "https://api.groq.com/openai/v1"

	defaultGreeting = "Привет, меня зовут Ягами Лайт."
	defaultApology  = "Произошла ошибка. Попробуйте позже."
)

type appConfig struct {
	logLevel slog.Level

	provider    string
	model       string
	personaFile string
	greeting    string
	apology     string

	maxOutputTokens int
	temperature     float64
	maxPairs        int
	cacheTTL        time.Duration
	dupWindow       time.Duration
	requestTimeout  time.Duration

	providerSettings map[string]providerSettings
}

type providerSettings struct {
	baseURL    string
	apiVersion string
}

type fileConfig struct {
	LogLevel        string                       `json:"log_level"`
	Provider        string                       `json:"provider"`
	Model           string                       `json:"model"`
	PersonaFile     string                       `json:"persona_file"`
	Greeting        string                       `json:"greeting"`
	Apology         string                       `json:"apology"`
	MaxOutputTokens *int                         `json:"max_output_tokens"`
	Temperature     *float64                     `json:"temperature"`
	MaxPairs        *int                         `json:"max_pairs"`
	CacheTTL        string                       `json:"cache_ttl"`
	DupWindow       string                       `json:"dup_window"`
	RequestTimeout  string                       `json:"request_timeout"`
	Providers       map[string]fileProviderEntry `json:"providers"`
}

type fileProviderEntry struct {
	BaseURL    string `json:"base_url"`
	APIVersion string `json:"api_version"`
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.logLevel}))

	persona, err := loadPersona(cfg.personaFile)
	if err != nil {
		return err
	}

	registry, err := buildGeneratorRegistry(cfg)
	if err != nil {
		return err
	}
	generator, err := registry.Resolve(cfg.provider)
	if err != nil {
		return fmt.Errorf("resolve provider %s: %w", cfg.provider, err)
	}

	sessions, err := session.NewManager(
		session.Config{
			Persona:         persona,
			Model:           cfg.model,
			MaxPairs:        cfg.maxPairs,
			CacheTTL:        cfg.cacheTTL,
			DupWindow:       cfg.dupWindow,
			MaxOutputTokens: cfg.maxOutputTokens,
			Temperature:     cfg.temperature,
		},
		generator,
		session.WithLogger(logger),
		session.WithRequestTimeout(cfg.requestTimeout),
	)
	if err != nil {
		return fmt.Errorf("build session manager: %w", err)
	}

	dispatcher, err := commands.NewDispatcher(
		sessions,
		commands.WithLogger(logger),
		commands.WithGreeting(cfg.greeting),
	)
	if err != nil {
		return fmt.Errorf("build command dispatcher: %w", err)
	}

	telegramCfg, err := telegramConfigFromEnv()
	if err != nil {
		return err
	}

	app := &botApp{
		sessions: sessions,
		commands: dispatcher,
		apology:  cfg.apology,
		logger:   logger,
	}

	peers := telegram.NewPeerCache()
	driver, err := telegram.NewDriver(telegramCfg, peers, app.handleInbound, telegram.WithDriverLogger(logger))
	if err != nil {
		return fmt.Errorf("build telegram driver: %w", err)
	}
	sender, err := telegram.NewSender(driver.API(), peers, telegram.WithSenderLogger(logger))
	if err != nil {
		return fmt.Errorf("build telegram sender: %w", err)
	}
	app.sink = sender

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot starting", "provider", cfg.provider, "model", cfg.model)

	if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run telegram driver: %w", err)
	}

	return nil
}

// botApp ties the transport to the session and command layers.
type botApp struct {
	sessions *session.Manager
	commands *commands.Dispatcher
	sink     yagami.DeliverySink
	apology  string
	logger   *slog.Logger
}

func (a *botApp) handleInbound(ctx context.Context, inbound telegram.Inbound) error {
	if inbound.IsCommand {
		reply, handled := a.commands.Dispatch(ctx, inbound.UserID, inbound.Text)
		if handled {
			return a.deliver(ctx, inbound.UserID, reply)
		}
		// Unrecognized commands read as conversational text.
	}

	outcome := a.sessions.Handle(ctx, inbound.UserID, inbound.Text)
	switch outcome.Kind {
	case session.OutcomeIgnored, session.OutcomeRejectDuplicate:
		return nil
	case session.OutcomeDeliverCached, session.OutcomeDeliverGenerated:
		return a.deliver(ctx, inbound.UserID, outcome.Reply)
	case session.OutcomeDeliverError:
		if err := a.deliver(ctx, inbound.UserID, a.apology); err != nil {
			return fmt.Errorf("deliver apology: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unhandled outcome kind %q", outcome.Kind)
	}
}

func (a *botApp) deliver(ctx context.Context, userID string, text string) error {
	if err := a.sink.Send(ctx, yagami.SendRequest{UserID: userID, Text: text}); err != nil {
		return fmt.Errorf("deliver reply to user %s: %w", userID, err)
	}

	return nil
}

func loadConfig() (appConfig, error) {
	cfg := defaultAppConfig()

	configFile, err := resolveConfigFilePath()
	if err != nil {
		return appConfig{}, err
	}
	if configFile != "" {
		if err := applyConfigFile(&cfg, configFile); err != nil {
			return appConfig{}, err
		}
	}

	if _, known := providerEnvKeys()[cfg.provider]; !known {
		return appConfig{}, fmt.Errorf("unknown provider %q", cfg.provider)
	}

	return cfg, nil
}

// resolveConfigFilePath returns the config file path, or empty when no file
// exists. Every file setting has a default, so running without one is fine.
func resolveConfigFilePath() (string, error) {
	if configFile := strings.TrimSpace(os.Getenv(envConfigFile)); configFile != "" {
		return configFile, nil
	}

	candidates := []string{defaultConfigFilePath, alternateConfigFilePath}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config file %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat config file %s: %w", candidate, err)
		}
	}

	return "", nil
}

func defaultAppConfig() appConfig {
	return appConfig{
		logLevel: slog.LevelInfo,

		provider:    defaultProvider,
		model:       defaultModel,
		personaFile: defaultPersonaFile,
		greeting:    defaultGreeting,
		apology:     defaultApology,

		maxOutputTokens: defaultMaxOutputTokens,
		temperature:     defaultTemperature,
		maxPairs:        session.DefaultMaxPairs,
		cacheTTL:        session.DefaultCacheTTL,
		dupWindow:       session.DefaultDupWindow,
		requestTimeout:  session.DefaultRequestTimeout,

		providerSettings: map[string]providerSettings{
			providerGroq: {baseURL: defaultGroqBaseURL},
		},
	}
}

func applyConfigFile(cfg *appConfig, path string) error {
	if cfg == nil {
		return fmt.Errorf("apply config file: nil config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if rawLevel := strings.TrimSpace(parsed.LogLevel); rawLevel != "" {
		level, err := parseLogLevel(rawLevel)
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		cfg.logLevel = level
	}

	if provider := strings.TrimSpace(parsed.Provider); provider != "" {
		cfg.provider = strings.ToLower(provider)
	}
	if model := strings.TrimSpace(parsed.Model); model != "" {
		cfg.model = model
	}
	if personaFile := strings.TrimSpace(parsed.PersonaFile); personaFile != "" {
		cfg.personaFile = personaFile
	}
	if greeting := strings.TrimSpace(parsed.Greeting); greeting != "" {
		cfg.greeting = parsed.Greeting
	}
	if apology := strings.TrimSpace(parsed.Apology); apology != "" {
		cfg.apology = parsed.Apology
	}

	if parsed.MaxOutputTokens != nil {
		if *parsed.MaxOutputTokens <= 0 {
			return fmt.Errorf("parse max_output_tokens: must be > 0")
		}
		cfg.maxOutputTokens = *parsed.MaxOutputTokens
	}
	if parsed.Temperature != nil {
		if *parsed.Temperature < 0 {
			return fmt.Errorf("parse temperature: must be >= 0")
		}
		cfg.temperature = *parsed.Temperature
	}
	if parsed.MaxPairs != nil {
		if *parsed.MaxPairs <= 0 {
			return fmt.Errorf("parse max_pairs: must be > 0")
		}
		cfg.maxPairs = *parsed.MaxPairs
	}

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{name: "cache_ttl", raw: parsed.CacheTTL, target: &cfg.cacheTTL},
		{name: "dup_window", raw: parsed.DupWindow, target: &cfg.dupWindow},
		{name: "request_timeout", raw: parsed.RequestTimeout, target: &cfg.requestTimeout},
	}
	for _, entry := range durations {
		rawDuration := strings.TrimSpace(entry.raw)
		if rawDuration == "" {
			continue
		}
		duration, err := time.ParseDuration(rawDuration)
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.name, err)
		}
		if duration <= 0 {
			return fmt.Errorf("parse %s: must be > 0", entry.name)
		}
		*entry.target = duration
	}

	for name, entry := range parsed.Providers {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, known := providerEnvKeys()[name]; !known {
			return fmt.Errorf("parse providers.%s: unknown provider", name)
		}
		settings := cfg.providerSettings[name]
		if baseURL := strings.TrimSpace(entry.BaseURL); baseURL != "" {
			settings.baseURL = baseURL
		}
		if apiVersion := strings.TrimSpace(entry.APIVersion); apiVersion != "" {
			settings.apiVersion = apiVersion
		}
		cfg.providerSettings[name] = settings
	}

	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported level %q", raw)
	}
}

func loadPersona(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona file %s: %w", path, err)
	}

	persona := strings.TrimSpace(string(data))
	if persona == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}

	return persona, nil
}

func providerEnvKeys() map[string]string {
	return map[string]string{
		providerGroq:   envGroqAPIKey,
		providerOpenAI: envOpenAIAPIKey,
		providerGemini: envGeminiAPIKey,
	}
}

// buildGeneratorRegistry constructs one generator per provider whose API key
// is present in the environment.
func buildGeneratorRegistry(cfg appConfig) (*llm.Registry, error) {
	generators := make(map[string]yagami.Generator)

	if apiKey := strings.TrimSpace(os.Getenv(envGroqAPIKey)); apiKey != "" {
		settings := cfg.providerSettings[providerGroq]
		provider, err := openaiprovider.New(openaiprovider.ProviderConfig{
			APIKey:  apiKey,
			BaseURL: settings.baseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build groq provider: %w", err)
		}
		generators[providerGroq] = provider
	}

	if apiKey := strings.TrimSpace(os.Getenv(envOpenAIAPIKey)); apiKey != "" {
		settings := cfg.providerSettings[providerOpenAI]
		provider, err := openaiprovider.New(openaiprovider.ProviderConfig{
			APIKey:  apiKey,
			BaseURL: settings.baseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build openai provider: %w", err)
		}
		generators[providerOpenAI] = provider
	}

	if apiKey := strings.TrimSpace(os.Getenv(envGeminiAPIKey)); apiKey != "" {
		settings := cfg.providerSettings[providerGemini]
		provider, err := geminiprovider.New(geminiprovider.ProviderConfig{
			APIKey:     apiKey,
			BaseURL:    settings.baseURL,
			APIVersion: settings.apiVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("build gemini provider: %w", err)
		}
		generators[providerGemini] = provider
	}

	if len(generators) == 0 {
		return nil, fmt.Errorf(
			"no provider api key configured; set %s, %s, or %s",
			envGroqAPIKey, envOpenAIAPIKey, envGeminiAPIKey,
		)
	}

	registry, err := llm.NewRegistry(generators)
	if err != nil {
		return nil, fmt.Errorf("build generator registry: %w", err)
	}

	return registry, nil
}

func telegramConfigFromEnv() (telegram.DriverConfig, error) {
	rawAppID := strings.TrimSpace(os.Getenv(envTelegramAppID))
	if rawAppID == "" {
		return telegram.DriverConfig{}, fmt.Errorf("%s is required", envTelegramAppID)
	}
	appID, err := strconv.Atoi(rawAppID)
	if err != nil {
		return telegram.DriverConfig{}, fmt.Errorf("parse %s: %w", envTelegramAppID, err)
	}

	cfg := telegram.DriverConfig{
		AppID:    appID,
		AppHash:  strings.TrimSpace(os.Getenv(envTelegramAppHash)),
		BotToken: strings.TrimSpace(os.Getenv(envTelegramToken)),
	}
	if cfg.AppHash == "" {
		return telegram.DriverConfig{}, fmt.Errorf("%s is required", envTelegramAppHash)
	}
	if cfg.BotToken == "" {
		return telegram.DriverConfig{}, fmt.Errorf("%s is required", envTelegramToken)
	}

	return cfg, nil
}
