package validation

import (
	"fmt"
	"strings"
)

// InputValidator validates user input
type InputValidator struct {
}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateConfigName checks the name given to a saved configuration
func (iv *InputValidator) ValidateConfigName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("configuration name cannot be empty")
	}
	if strings.ContainsAny(name, "<>\"&\\") {
		return fmt.Errorf("configuration name contains invalid characters")
	}
	if len(name) > 100 {
		return fmt.Errorf("configuration name is too long (max 100 characters)")
	}
	return nil
}

// ValidateModelName checks if a model name is valid
func (iv *InputValidator) ValidateModelName(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if strings.ContainsAny(model, "<>\"'&/\\ ") {
		return fmt.Errorf("model name contains invalid characters")
	}
	return nil
}

// ValidateModelInList reports whether model is one of the listed models.
// Whitespace around either side is ignored.
func (iv *InputValidator) ValidateModelInList(model string, models []string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	normalizedModel := strings.TrimSpace(model)
	for _, m := range models {
		if strings.TrimSpace(m) == normalizedModel {
			return nil
		}
	}

	return fmt.Errorf("model '%s' is not in supported models list: %v", model, models)
}
