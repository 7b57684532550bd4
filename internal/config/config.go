// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is used when neither -c nor CONFIG is given.
const DefaultConfigPath = "config.json"

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"server_address" yaml:"server_address" env:"SERVER_ADDRESS" env-default:":8080"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn" env:"DATABASE_DSN"`

	// Config is the path to the config file.
	Config string `json:"-" yaml:"-"`

	JWTSecret string        `json:"jwt_secret" yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string        `json:"jwt_issuer" yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"inventory"`
	TokenTTL  time.Duration `json:"token_ttl" yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`

	GoogleClientID     string `json:"google_client_id" yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `json:"google_client_secret" yaml:"google_client_secret" env:"GOOGLE_CLIENT_SECRET"`
	// CallbackURL is the redirect URI registered with the identity provider.
	CallbackURL string `json:"callback_url" yaml:"callback_url" env:"CALLBACK_URL"`

	// UploadDir is where uploaded images are written.
	UploadDir string `json:"upload_dir" yaml:"upload_dir" env:"UPLOAD_DIR" env-default:"uploads"`
	// PublicBaseURL prefixes stored image references, e.g. https://api.example.com.
	// Empty means references are host-relative (/uploads/<name>).
	PublicBaseURL  string `json:"public_base_url" yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	MaxUploadBytes int64  `json:"max_upload_bytes" yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	LogLevel    string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	CORSOrigins string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	TLSCertFile string `json:"tls_cert_file" yaml:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `json:"tls_key_file" yaml:"tls_key_file" env:"TLS_KEY_FILE"`
}

// Parse parses the command-line flags, the config file and environment
// variables, in that order of increasing priority. Unset fields fall back
// to their env-default values.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs is Parse over an explicit argument list.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Addr, "a", "", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "", "path to config file")
	fs.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := Load(options); err != nil {
		return nil, err
	}
	return options, nil
}

// Load overlays the config file (if any) and the environment onto options.
// The file path comes from CONFIG, then options.Config, then DefaultConfigPath.
// A missing default file is not an error; a missing explicit one is.
func Load(options *Options) error {
	path := options.Config
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		path = configPath
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, options); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		options.Config = path
		return nil
	} else if explicit {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(options); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

// LoadForCLI loads options for the admin tool, which only needs the
// database and upload settings.
func LoadForCLI(options *Options) error {
	if err := Load(options); err != nil {
		return err
	}
	if options.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}

// Validate reports every missing value the HTTP server needs.
func (o *Options) Validate() error {
	var errs []error
	if o.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if len(o.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if o.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	if o.GoogleClientSecret == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_SECRET is required"))
	}
	if o.CallbackURL == "" {
		errs = append(errs, errors.New("CALLBACK_URL is required"))
	}
	if o.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if o.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// AllowedOrigins splits CORSOrigins on commas.
func (o *Options) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(o.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
