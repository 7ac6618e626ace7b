// Package cli constructs the git-prompt command-line interface. It wires the
// Cobra command hierarchy, the configuration loader, structured logging, and
// the repository backend selected for prompt resolution.
package cli
