// Package config builds the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = "3000"
	DefaultIdentity      = "guest"
	DefaultGreeting      = "Welcome to Oakmont Realty VOIP CRM"
	DefaultTestCallURL   = "http://demo.twilio.com/docs/voice.xml"
	DefaultClipURL       = "https://demo.twilio.com/docs/classic.mp3"
	DefaultEventName     = "25 Moonstone Place Open House"
	DefaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"
	DefaultPipedriveURL  = "https://api.pipedrive.com/v1"
	DefaultTokenTTL      = time.Hour
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	Twilio    Twilio
	TestCall  TestCall
	Hosted    Hosted
	Capture   Capture
	Pipedrive Pipedrive
	Redis     Redis
	AMQP      AMQP

	// DatabaseURL, when set, is a Postgres DSN used for direct row storage.
	DatabaseURL string
}

// Twilio holds the voice provider credentials.
type Twilio struct {
	AccountSID string
	AuthToken  string
	APIKey     string
	APISecret  string
	AppSID     string
	Number     string
	BaseURL    string
	TokenTTL   time.Duration
	Greeting   string
}

// RESTCredentials returns the basic-auth pair for the provider REST API.
// An API key pair is preferred over the account auth token.
func (t Twilio) RESTCredentials() (string, string) {
	if t.APIKey != "" && t.APISecret != "" {
		return t.APIKey, t.APISecret
	}
	return t.AccountSID, t.AuthToken
}

type TestCall struct {
	GreetingURL string
	ClipURL     string
	DefaultTo   string
	// Secret guards the test-call routes when non-empty.
	Secret string
}

// Hosted is the hosted backend (Supabase) connection.
type Hosted struct {
	URL     string
	AnonKey string
	Table   string
}

// Enabled reports whether both the URL and the anonymous key are present.
func (h Hosted) Enabled() bool {
	return h.URL != "" && h.AnonKey != ""
}

type Capture struct {
	EventName string
}

type Pipedrive struct {
	APIKey   string
	BaseURL  string
	CacheTTL time.Duration
}

func (p Pipedrive) Enabled() bool { return p.APIKey != "" }

type Redis struct {
	Addr     string
	Password string
	DB       int
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type AMQP struct {
	URL      string
	Exchange string
}

func (a AMQP) Enabled() bool { return a.URL != "" }

// LoadDotEnv reads a .env file into the process environment when present.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     envOrDefault("PORT", DefaultPort),
		Env:      os.Getenv("ENV"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),
		Twilio: Twilio{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			APIKey:     os.Getenv("TWILIO_API_KEY"),
			APISecret:  os.Getenv("TWILIO_API_SECRET"),
			AppSID:     envOrDefault("TWILIO_TWIML_APP_SID", os.Getenv("TWILIO_APP_SID")),
			Number:     os.Getenv("TWILIO_NUMBER"),
			BaseURL:    strings.TrimRight(envOrDefault("TWILIO_API_BASE_URL", DefaultTwilioBaseURL), "/"),
			TokenTTL:   envOrDefaultDuration("TOKEN_TTL", DefaultTokenTTL),
			Greeting:   envOrDefault("VOICE_GREETING", DefaultGreeting),
		},
		TestCall: TestCall{
			GreetingURL: envOrDefault("TEST_CALL_URL", DefaultTestCallURL),
			ClipURL:     envOrDefault("PRANK_MP3_URL", DefaultClipURL),
			DefaultTo:   os.Getenv("TEST_CALL_TO"),
			Secret:      os.Getenv("TEST_CALL_TOKEN"),
		},
		Hosted: Hosted{
			URL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
			Table:   envOrDefault("ATTENDEES_TABLE", "attendees"),
		},
		Capture: Capture{
			EventName: envOrDefault("EVENT_NAME", DefaultEventName),
		},
		Pipedrive: Pipedrive{
			APIKey:   os.Getenv("PIPEDRIVE_API_KEY"),
			BaseURL:  strings.TrimRight(envOrDefault("PIPEDRIVE_BASE_URL", DefaultPipedriveURL), "/"),
			CacheTTL: envOrDefaultDuration("DEALS_CACHE_TTL", time.Minute),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envOrDefaultInt("REDIS_DB", 0),
		},
		AMQP: AMQP{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: envOrDefault("AMQP_EXCHANGE", "crm.events"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
