package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Watch modes.
const (
	WatchModeNotify = "notify"
	WatchModePoll   = "poll"
)

// Transports.
const (
	TransportSSE  = "sse"
	TransportWS   = "ws"
	TransportBoth = "both"
)

// DefaultPort is the preview HTTP port used when none is configured.
const DefaultPort = 8110

// ErrNoFile is returned when the preview is started without a post file.
var ErrNoFile = errors.New("file path was not provided, run `quill preview <filename>`")

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Preview PreviewConfig     `yaml:"preview"`
	Blog    BlogConfig        `yaml:"blog"`
	History HistoryConfig     `yaml:"history"`
}

// Validate validates the parts of the configuration every command relies on.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Blog.Validate(); err != nil {
		return err
	}
	return c.History.Validate()
}

// ValidatePreview validates the configuration for the preview server,
// including the watched file.
func (c *Config) ValidatePreview() error {
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Preview.SocketPort != 0 && c.Preview.SocketPort == c.App.HTTP.Port {
		return fmt.Errorf("preview: socket_port %d collides with http port", c.Preview.SocketPort)
	}
	return nil
}

// MediaBaseURL returns the absolute URL under which the watched file's
// directory is served. It always ends with a slash.
func (c *Config) MediaBaseURL() (*url.URL, error) {
	raw := c.Preview.MediaURL
	if raw == "" {
		raw = fmt.Sprintf("http://localhost:%d/", c.App.HTTP.Port)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("preview: media url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PreviewConfig holds the live preview settings.
type PreviewConfig struct {
	File       string        `yaml:"file"`
	Interval   time.Duration `yaml:"interval"`
	WatchMode  string        `yaml:"watch_mode"`
	Transport  string        `yaml:"transport"`
	MediaURL   string        `yaml:"media_url"`
	SocketPort int           `yaml:"socket_port"`
	Open       bool          `yaml:"open"`
	ViewerURL  string        `yaml:"viewer_url"`

	// HighlightStyle names a chroma style for inline code colors. Empty emits
	// CSS classes.
	HighlightStyle string `yaml:"highlight_style"`
}

// Validate validates the preview configuration. The file must exist and be
// a regular file.
func (c *PreviewConfig) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return ErrNoFile
	}
	info, err := os.Stat(c.File)
	if err != nil {
		return fmt.Errorf("invalid file provided, please check if the following path is correct: %s", c.File)
	}
	if info.IsDir() {
		return fmt.Errorf("invalid file provided, %s is a directory", c.File)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.WatchMode, validation.Required, validation.In(WatchModeNotify, WatchModePoll)),
		validation.Field(&c.Transport, validation.Required, validation.In(TransportSSE, TransportWS, TransportBoth)),
		validation.Field(&c.SocketPort, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.MediaURL, validation.By(absoluteURL)),
		validation.Field(&c.ViewerURL, validation.By(absoluteURL)),
	)
}

// AbsFile returns the absolute path of the watched file.
func (c *PreviewConfig) AbsFile() (string, error) {
	return filepath.Abs(c.File)
}

// ServesSSE reports whether the server-push stream transport is mounted.
func (c *PreviewConfig) ServesSSE() bool {
	return c.Transport == TransportSSE || c.Transport == TransportBoth
}

// ServesWS reports whether the socket transport is mounted.
func (c *PreviewConfig) ServesWS() bool {
	return c.Transport == TransportWS || c.Transport == TransportBoth
}

// BlogConfig locates the blog checkout that new posts are scaffolded into.
type BlogConfig struct {
	Root           string `yaml:"root"`
	AuthorsFile    string `yaml:"authors_file"`
	CategoriesFile string `yaml:"categories_file"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.AuthorsFile, validation.Required),
		validation.Field(&c.CategoriesFile, validation.Required),
	)
}

// HistoryConfig holds the revision log settings. An empty Path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether revisions are recorded.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.HasSuffix(c.Path, string(os.PathSeparator)) {
		return fmt.Errorf("history: path %q must name a file", c.Path)
	}
	return nil
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: DefaultPort,
			},
		},
		Preview: PreviewConfig{
			Interval:  200 * time.Millisecond,
			WatchMode: WatchModeNotify,
			Transport: TransportBoth,
		},
		Blog: BlogConfig{
			Root:           ".",
			AuthorsFile:    "authors.json",
			CategoriesFile: "categories.json",
		},
	}
}
