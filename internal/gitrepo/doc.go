// Package gitrepo defines the read-only repository backend consumed by the
// prompt resolver and implements it on top of the git executable.
//
// Repository is the handle contract: HEAD resolution, operational state,
// remote-tracking branch enumeration, upstream lookup, ahead/behind counting,
// working tree status and rebase marker reads. RepositoryManager opens
// repositories by shelling out to git through execshell; the gogit
// subpackage provides the same contract on top of go-git.
package gitrepo
