package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Configure console settings",
	Long: `Configure console settings interactively.

This allows you to modify:
  - Backend server URL
  - Poll interval (ms)
  - Feature flags sent as run overrides

Press Enter to keep the current value for any setting.`,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	// Server URL
	fmt.Printf("Backend server URL [%s]: ", settings.ServerURL)
	serverURL, _ := reader.ReadString('\n')
	serverURL = strings.TrimSpace(serverURL)
	if serverURL != "" && serverURL != settings.ServerURL {
		if !isValidServerURL(serverURL) {
			return fmt.Errorf("invalid server URL: %s (expected http:// or https://)", serverURL)
		}
		settings.ServerURL = serverURL
		changed = true
	}

	// Poll interval
	fmt.Printf("Poll interval in ms [%d]: ", settings.PollIntervalMS)
	intervalStr, _ := reader.ReadString('\n')
	intervalStr = strings.TrimSpace(intervalStr)
	if intervalStr != "" {
		interval, err := strconv.Atoi(intervalStr)
		if err != nil || interval < 100 {
			return fmt.Errorf("invalid poll interval: %s (minimum 100)", intervalStr)
		}
		if interval != settings.PollIntervalMS {
			settings.PollIntervalMS = interval
			changed = true
		}
	}

	// Feature flags
	fmt.Println("\nFeature flags (sent as run overrides):")

	flagPrompts := []struct {
		prompt string
		value  *bool
	}{
		{"Enable web search tool?", &settings.Features.EnableSearchTool},
		{"Enable human-in-the-loop plan review?", &settings.Features.EnableHITL},
		{"Enable simple-task short circuit?", &settings.Features.EnableSimpleTaskCheck},
		{"Enable deep research phase?", &settings.Features.EnableDeepResearch},
		{"Use simplified goal for deep research?", &settings.Features.DeepResearchUseSimpleGoal},
	}
	for _, fp := range flagPrompts {
		next := promptYesNoWithCurrent(reader, fp.prompt, *fp.value)
		if next != *fp.value {
			*fp.value = next
			changed = true
		}
	}

	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("\nSettings updated.")
	return nil
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("  %s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}

// isValidServerURL validates an http(s) base URL.
func isValidServerURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
