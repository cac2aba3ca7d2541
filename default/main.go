// Package defaults holds the assets compiled into the binary: the system
// instruction sent with every continuation request and the default config.
package defaults

import _ "embed"

// DefaultInstruction asks the model for a short, tone-preserving continuation.
//
//go:embed default_instruction.md
var DefaultInstruction string

//go:embed default_config.toml
var DefaultConfigTOML string
