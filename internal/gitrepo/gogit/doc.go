// Package gogit implements gitrepo.Repository on top of go-git so prompts can be
// resolved without spawning the git executable.
package gogit
