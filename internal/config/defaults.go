package config

// QualityPreset maps a quality tier to a concrete model.
type QualityPreset struct {
	Model string
}

// qualityPresets maps each provider+quality combination to its model choice.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929"},
		QualityMax:    {Model: "claude-opus-4-6"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini"},
		QualityNormal: {Model: "gpt-4o"},
		QualityMax:    {Model: "gpt-4"},
	},
}

// GetPreset returns the model preset for a provider and quality tier,
// falling back to the normal tier.
func GetPreset(provider ProviderType, quality QualityTier) QualityPreset {
	tiers, ok := qualityPresets[provider]
	if !ok {
		return QualityPreset{}
	}
	if preset, ok := tiers[quality]; ok {
		return preset
	}
	return tiers[QualityNormal]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderAnthropic,
		Model:              qualityPresets[ProviderAnthropic][QualityNormal].Model,
		Quality:            QualityNormal,
		DefaultTeam:        "default",
		Port:               8080,
		DataDir:            ".lexflow",
		AllowedOrigins:     []string{"*"},
		AuditRetentionDays: 365,
	}
}
