// Package config resolves the CLI configuration once per invocation.
//
// Resolution precedence is command-line flags > environment variables >
// defaults, implemented with viper bound to each command's pflag set. The
// result is an immutable Config passed explicitly into service
// constructors; no package-level state and no config files.
package config
