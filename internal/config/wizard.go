package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs the interactive first-run wizard and saves the resulting
// config to .lexflow.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to lexflow! Let's configure your intake assistant.")
	fmt.Println()

	firmPrompt := promptui.Prompt{
		Label:   "Firm name",
		Default: "Your Firm",
	}
	firmName, err := firmPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("firm name: %w", err)
	}

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"anthropic", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap (haiku / gpt-4o-mini)",
			"normal — balanced (sonnet / gpt-4o)",
			"max    — highest quality (opus / gpt-4)",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	preset := GetPreset(provider, quality)

	teamPrompt := promptui.Prompt{
		Label:   "Default team ID",
		Default: "default",
	}
	team, err := teamPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default team: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: "8080",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: ".lexflow",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	cfg := DefaultConfig()
	cfg.FirmName = strings.TrimSpace(firmName)
	cfg.Provider = provider
	cfg.Model = preset.Model
	cfg.Quality = quality
	cfg.DefaultTeam = strings.TrimSpace(team)
	cfg.Port = port
	cfg.DataDir = strings.TrimSpace(dataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, err
	}

	fmt.Printf("\nSaved configuration to %s\n", DefaultPath)
	return cfg, nil
}
