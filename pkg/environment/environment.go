// Package environment names the deployment environments and parses them from
// configuration.
package environment

import "strings"

// Environment is the deployment environment name.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps common spellings onto an Environment. Unknown values are
// treated as development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// IsDevelopment reports true for development and any unrecognised value.
func (e Environment) IsDevelopment() bool {
	return e != Production && e != Staging
}
