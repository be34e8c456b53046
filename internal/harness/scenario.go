package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted playthrough of a story.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Story is the id of the story to play, resolved against the
	// built-in catalog.
	Story string `yaml:"story"`

	// RunToken is an optional fixed run token. Defaults to
	// "run-test-0001" so golden traces stay stable.
	RunToken string `yaml:"run_token,omitempty"`

	// Steps are the player actions, executed in order.
	Steps []Step `yaml:"steps"`

	// Final validates the scorecard after the last step. Required when
	// the steps play the story through to completion.
	Final *FinalClause `yaml:"final,omitempty"`
}

// Step is a single player action and its expected outcome.
type Step struct {
	// Action is "buy", "sell", or "skip".
	Action string `yaml:"action"`

	// Quantity is the number of shares for buy/sell. Omitted means
	// all-in (buy) or sell-everything (sell). Must be omitted for skip.
	Quantity *int64 `yaml:"quantity,omitempty"`

	// Expect specifies the expected outcome. If nil the step just has
	// to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code (e.g. "INSUFFICIENT_CASH").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Cash is the expected cash balance in cents after the step.
	Cash *int64 `yaml:"cash,omitempty"`

	// Shares is the expected share count after the step.
	Shares *int64 `yaml:"shares,omitempty"`
}

// FinalClause validates the scorecard produced by the terminal step.
type FinalClause struct {
	// FinalNetValue is the expected final net value in cents.
	FinalNetValue int64 `yaml:"final_net_value"`

	// BuyAndHoldFinalValue is the expected baseline final value in cents.
	BuyAndHoldFinalValue int64 `yaml:"buy_and_hold_final_value"`

	// TradeCount is the expected number of executed trades (skips
	// excluded).
	TradeCount int `yaml:"trade_count"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as parse errors instead of silently ignored
// expectations.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Story == "" {
		return fmt.Errorf("story is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.RunToken == "" {
		s.RunToken = "run-test-0001"
	}

	for i, step := range s.Steps {
		switch step.Action {
		case "buy", "sell":
			if step.Quantity != nil && *step.Quantity <= 0 {
				return fmt.Errorf("steps[%d]: quantity must be positive when set", i)
			}
		case "skip":
			if step.Quantity != nil {
				return fmt.Errorf("steps[%d]: skip takes no quantity", i)
			}
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
	}

	return nil
}
