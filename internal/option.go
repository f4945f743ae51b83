package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

// ReadyInfo describes the running preview once every listener is bound.
type ReadyInfo struct {
	// URL is the base of the HTTP server and the media root.
	URL string
	// ViewerURL is the page to open in a browser.
	ViewerURL string
	// SocketURL is set when the socket transport has its own port.
	SocketURL string
}

type application struct {
	config    *Config
	logOutput io.Writer
	onReady   func(ReadyInfo)
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where structured logs are written. Defaults to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithOnReady registers a callback invoked once the servers are listening.
func WithOnReady(fn func(ReadyInfo)) Option {
	return func(a *application) {
		a.onReady = fn
	}
}
