package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .redline.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to redline! Let's configure your review server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Port),
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
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir prompt: %w", err)
	}

	// 3. Semantic comment search.
	searchPrompt := promptui.Select{
		Label: "Enable semantic comment search (requires an OpenAI API key)",
		Items: []string{"no", "yes"},
	}
	_, enableSearch, err := searchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("search selection: %w", err)
	}
	if enableSearch == "yes" {
		keyPrompt := promptui.Prompt{
			Label: "OpenAI API key (leave empty to use REDLINE_SEARCH_API_KEY)",
			Mask:  '*',
		}
		if cfg.Search.APIKey, err = keyPrompt.Run(); err != nil {
			return nil, fmt.Errorf("api key prompt: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(".redline.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .redline.yml")
	return cfg, nil
}
