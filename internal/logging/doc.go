// Package logging builds the zap logger shared by gha2db tools.
package logging
