package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithIO overrides the standard streams used by the mcp and browse modes.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}
