package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// PromptForString displays a single interactive input and returns the value.
func PromptForString(title string, required bool) (string, error) {
	var value string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Value(&value),
	))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	if required && value == "" {
		return "", fmt.Errorf("%s is required", title)
	}

	return value, nil
}

// PromptForPassword displays a masked input and returns the value.
func PromptForPassword(title string) (string, error) {
	var value string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(&value),
	))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	if value == "" {
		return "", fmt.Errorf("%s is required", title)
	}

	return value, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt.
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(message).Value(&confirmed),
	))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

// PromptForSelect displays a selection prompt over label/value pairs.
func PromptForSelect(message string, options map[string]string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	huhOptions := make([]huh.Option[string], 0, len(options))
	for label, value := range options {
		huhOptions = append(huhOptions, huh.NewOption(label, value))
	}

	var selected string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(message).Options(huhOptions...).Value(&selected),
	))

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown: stdin is a terminal
// and we are not running in CI.
func ShouldPrompt() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return IsInteractive()
}
