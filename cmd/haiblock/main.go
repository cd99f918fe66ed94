package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	haiblock "github.com/haiblock/gosdk"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func main() {
	// A .env file in the working directory fills in variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	apiURL     string
	token      string
	configPath string
	timeout    time.Duration
	retries    uint64
	verbose    bool
	output     string

	getenv func(string) string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{getenv: os.Getenv}

	root := &cobra.Command{
		Use:   "haiblock",
		Short: "Command-line client for the HaiBlock content optimization API",
		Long: `Command-line client for the HaiBlock content optimization API.

Connection settings are taken from flags, then HAIBLOCK_API_URL and
HAIBLOCK_AUTH_TOKEN (a .env file is honoured), then the --config profile.

Examples:
  haiblock upload ./about-us.txt --meta source=website
  haiblock transform <content-id>
  haiblock submit <content-id> --provider bedrock
  haiblock analytics`,
		Version:       haiblock.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputText && opts.output != outputJSON {
				return fmt.Errorf("unsupported output format %q: use text or json", opts.output)
			}
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.apiURL, "api-url", "", "API base URL")
	f.StringVar(&opts.token, "token", "", "API auth token")
	f.StringVar(&opts.configPath, "config", "", "YAML profile with api_url, auth_token and timeout")
	f.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default 30s)")
	f.Uint64Var(&opts.retries, "retries", 0, "retry rate-limited requests up to this many times")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	f.StringVarP(&opts.output, "output", "o", outputText, "output format: text or json")

	root.AddCommand(
		newUploadCmd(opts),
		newContentCmd(opts),
		newTransformCmd(opts),
		newSubmitCmd(opts),
		newSubmissionsCmd(opts),
		newAnalyticsCmd(opts),
	)
	return root
}

// verboseLogger builds the logger used with --verbose.
var verboseLogger = zap.NewDevelopment

// client builds an SDK client from the resolved settings. The returned done func closes the
// client and flushes the logger; callers defer it.
func (o *globalOptions) client() (*haiblock.Client, func(), error) {
	p, err := loadProfile(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	s := resolveSettings(settings{APIURL: o.apiURL, AuthToken: o.token, Timeout: o.timeout}, o.getenv, p)

	logger := zap.NewNop()
	if o.verbose {
		logger, err = verboseLogger()
		if err != nil {
			return nil, nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	retry := haiblock.DefaultRetryConfig()
	retry.MaxRetries = o.retries

	client, err := haiblock.New(
		haiblock.WithAPIURL(s.APIURL),
		haiblock.WithAuthToken(s.AuthToken),
		haiblock.WithTimeout(s.Timeout),
		haiblock.WithLogger(logger),
		haiblock.WithRetryConfig(retry),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	done := func() {
		client.Close()
		// Sync fails with EINVAL when stderr is a terminal.
		_ = logger.Sync()
	}
	return client, done, nil
}
