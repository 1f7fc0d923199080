// Package config resolves the gha2db process environment into a Ctx, the
// read-only settings snapshot handed to every tool.
//
// Resolution runs in two passes. The first reads every independent setting
// from its own variable, falling back to a literal default when the variable
// is absent or blank. The second derives settings that depend on others:
// normalized directories, project scoped YAML paths and the GitHub OAuth
// token location. Precedence for a single setting is: environment variable,
// then Overrides supplied by the caller, then the literal default.
//
// New never returns an error. A malformed value, a failed filesystem probe or
// a duplicate map key is handed to a fatal.Handler, which terminates the
// process, so callers only ever observe a complete Ctx.
package config
