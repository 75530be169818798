// Package config loads pipeline configuration from the environment.
//
// All settings carry DOCMILL_-prefixed environment variables with working
// defaults, so a zero-configuration run converts into ./output with a cache
// and security state under the user's home directory. Load also bootstraps
// the configured directories; an unwritable filesystem is the only fatal
// condition at startup.
package config
