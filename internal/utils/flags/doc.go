// Package flags binds validated enumerated and yes/no flags to pflag flag sets.
package flags
