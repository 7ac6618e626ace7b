// Package ui renders git invocation lifecycle events for humans.
//
// ConsoleCommandEventLogger plugs into execshell.ShellExecutor as a
// CommandEventObserver when the console log format is selected, so that
// `git-prompt --log-format console --log-level info` narrates every git query
// on stderr without touching the prompt printed on stdout.
package ui
