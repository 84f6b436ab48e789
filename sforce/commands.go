package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/natserract/sfrest/pkg/config"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

var (
	// Global flags
	outputFormat string
	debugLogging bool
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// app holds what every command shares once the root pre-run has finished.
type app struct {
	logger  *zap.Logger
	cfg     *config.Config
	session *sfrest.Session
}

var current = &app{}

var rootCmd = &cobra.Command{
	Use:   "sforce [command] [flags]",
	Short: "sforce - a command line client for the Salesforce REST API",
	Long: `sforce talks to a Salesforce org through its REST API.
It reads the org domain and password-grant credentials from the environment
(or a .env file): SF_DOMAIN, SF_CLIENT_ID, SF_CLIENT_SECRET, SF_USERNAME,
SF_PASSWORD and SF_SECURITY_TOKEN.

Examples:
  # List the sObjects of the org
  sforce objects

  # Describe an object as YAML
  sforce describe Account -o yaml

  # Create, update and delete an account
  sforce account create --name Fostech --employees 1
  sforce account update 001xx000003DGb2AAG --employees 3
  sforce account delete 001xx000003DGb2AAG`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current.logger != nil {
			_ = current.logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrAlreadyHandled) {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, args []string) error {
	if outputFormat != "json" && outputFormat != "yaml" {
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}

	var err error
	if debugLogging {
		current.logger, err = zap.NewDevelopment()
	} else {
		current.logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	current.cfg, err = config.Load()
	if err != nil {
		current.logger.Error("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// authenticatedSession creates the session on first use and runs the
// password grant with the configured credentials.
func authenticatedSession(ctx context.Context) (*sfrest.Session, error) {
	if current.session != nil {
		return current.session, nil
	}

	s, err := sfrest.NewSessionFromConfig(ctx, current.cfg, current.logger)
	if err != nil {
		return nil, err
	}

	if _, err := s.Authenticate(ctx, credentialsFromConfig(current.cfg)); err != nil {
		return nil, err
	}

	current.session = s
	return s, nil
}

func credentialsFromConfig(cfg *config.Config) sfrest.Credentials {
	return sfrest.Credentials{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		Username:      cfg.Username,
		Password:      cfg.Password,
		SecurityToken: cfg.SecurityToken,
	}
}

// printResponse writes the status to stderr and the body to w in the
// selected format. A non-2xx status is reported as ErrAlreadyHandled so the
// process exits non-zero without printing the body twice.
func printResponse(w io.Writer, resp *sfrest.Response) error {
	label := okLabel
	if !resp.IsSuccess() {
		label = errorLabel
	}
	label.Fprintf(os.Stderr, "HTTP %d\n", resp.StatusCode)

	if len(resp.Body) > 0 {
		if err := writeBody(w, resp.Body); err != nil {
			return err
		}
	}

	if !resp.IsSuccess() {
		return ErrAlreadyHandled
	}
	return nil
}

func writeBody(w io.Writer, body []byte) error {
	if outputFormat == "yaml" {
		out, err := yaml.JSONToYAML(body)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		// Not JSON; print it as the server sent it.
		_, err = fmt.Fprintln(w, string(body))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
