package config

// QualityTier controls the trade-off between speed/cost and model quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Config is the top-level lexflow configuration, corresponding to
// .lexflow.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	Quality  QualityTier  `yaml:"quality" koanf:"quality"`

	// FirmName is shown in wizard output and notification titles.
	FirmName string `yaml:"firm_name" koanf:"firm_name"`
	// DefaultTeam is the team ID used when a chat client does not send one.
	DefaultTeam string `yaml:"default_team" koanf:"default_team"`

	Port           int      `yaml:"port" koanf:"port"`
	DataDir        string   `yaml:"data_dir" koanf:"data_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`

	// AuditRetentionDays bounds the audit trail; 0 disables the sweep.
	AuditRetentionDays int `yaml:"audit_retention_days" koanf:"audit_retention_days"`
}
