package payment

import "fmt"

const (
	// EnvironmentSandbox routes charges to Square's sandbox
	EnvironmentSandbox = "sandbox"
	// EnvironmentProduction routes charges to live Square
	EnvironmentProduction = "production"
)

// SquareConfig holds credentials for the Square payments API
type SquareConfig struct {
	AccessToken string
	LocationID  string
	Environment string
}

// Validate checks the config is complete enough to charge cards
func (c *SquareConfig) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("square: access token is required")
	}
	if c.LocationID == "" {
		return fmt.Errorf("square: location ID is required")
	}
	switch c.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
	case "":
		c.Environment = EnvironmentSandbox
	default:
		return fmt.Errorf("square: environment must be %q or %q, got %q",
			EnvironmentSandbox, EnvironmentProduction, c.Environment)
	}
	return nil
}

// BaseURL returns the API host for the configured environment
func (c *SquareConfig) BaseURL() string {
	if c.Environment == EnvironmentProduction {
		return squareAPIBaseURL
	}
	return squareSandboxAPIBaseURL
}
