// Package prompt resolves the position, divergence, upstream, and change summary
// of a repository and renders them as a single shell prompt segment.
package prompt
