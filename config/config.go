package config

import (
	"time"

	"github.com/dilshat/sms-responder/util"
)

var defaultNetworkAliases = map[string]string{"cingular": "att"}

type Config struct {
	HTTPPort string
	DBPath   string
	Debug    bool
	//callers allowed to hit the webhooks outside of debug mode
	AllowedIPs []string

	SmsMaxLen      int
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration

	SendURL        string
	LookupURL      string
	LookupUser     string
	LookupPassword string
	CarrierTimeout time.Duration
	TrxPerSec      int
	NetworkAliases map[string]string
	ShortCode      string
	//carrier name assigned to phones whose network cannot be resolved
	DefaultCarrier string

	DefaultSiteId uint32
	Brand         string

	SMTP SMTPConfig

	ReportStoreDays int
	SeedFile        string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load reads the configuration from the environment. A .env file is expected
// to be loaded by the caller beforehand.
func Load() Config {
	return Config{
		HTTPPort:   util.GetEnv("HTTP_PORT", "8080"),
		DBPath:     util.GetEnv("DB_PATH", "sms.db"),
		Debug:      util.GetEnvAsBool("DEBUG", false),
		AllowedIPs: util.GetEnvAsList("ALLOWED_IPS", nil),

		SmsMaxLen:      util.GetEnvAsInt("SMS_MAX_LEN", 160),
		Workers:        util.GetEnvAsInt("WORKERS", 4),
		QueueSize:      util.GetEnvAsInt("QUEUE_SIZE", 100),
		ProcessTimeout: time.Duration(util.GetEnvAsInt("PROCESS_TIMEOUT_SEC", 30)) * time.Second,

		SendURL:        util.GetEnv("SEND_URL", ""),
		LookupURL:      util.GetEnv("LOOKUP_URL", ""),
		LookupUser:     util.GetEnv("LOOKUP_USER", ""),
		LookupPassword: util.GetEnv("LOOKUP_PWD", ""),
		CarrierTimeout: time.Duration(util.GetEnvAsInt("CARRIER_TIMEOUT_SEC", 10)) * time.Second,
		TrxPerSec:      util.GetEnvAsInt("TRX_PER_SEC", 10),
		NetworkAliases: util.GetEnvAsMap("NETWORK_ALIASES", defaultNetworkAliases),
		ShortCode:      util.GetEnv("SHORT_CODE", ""),
		DefaultCarrier: util.GetEnv("DEFAULT_CARRIER", ""),

		DefaultSiteId: uint32(util.GetEnvAsInt("DEFAULT_SITE_ID", 1)),
		Brand:         util.GetEnv("BRAND", "10Coupons"),

		SMTP: SMTPConfig{
			Host:     util.GetEnv("SMTP_HOST", ""),
			Port:     util.GetEnvAsInt("SMTP_PORT", 587),
			User:     util.GetEnv("SMTP_USER", ""),
			Password: util.GetEnv("SMTP_PWD", ""),
			From:     util.GetEnv("SMTP_FROM", ""),
		},

		ReportStoreDays: util.GetEnvAsInt("REPORT_STORE_DAYS", 90),
		SeedFile:        util.GetEnv("SEED_FILE", ""),
	}
}
