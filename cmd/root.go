package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/logging"
)

// envPrefix prefixes the environment variables that back persistent flags,
// e.g. ROOMUTIL_TOKEN_FILE for --token-file.
const envPrefix = "ROOMUTIL_"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	paths     config.Paths
	logLevel  string
	logFormat string
}

var global = globalOptions{paths: config.DefaultPaths()}

// rootCmd represents the base command for the roomutil application
var rootCmd = &cobra.Command{
	Use:   "roomutil",
	Short: "Reports conference room utilization from Google Calendar",
	Long: `roomutil reads the Google Calendar events of each configured conference room
over a date range, computes how well the rooms are used and posts the report
as a task in Asana or Google Tasks.

It can run as:
  - A standalone CLI tool (default, runs the report command)
  - An AWS Lambda function on a schedule
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return applyEnvDefaults(cmd.Flags())
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "roomutil version %s\n" .Version}}`)
	rootCmd.SetArgs(defaultArgs(os.Args[1:], subcommandNames(rootCmd), os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("roomutil failed", logging.Err(err))
		os.Exit(1)
	}
}

// subcommandNames returns the names and aliases of cmd's subcommands,
// including the help and completion commands cobra adds on Execute.
func subcommandNames(cmd *cobra.Command) map[string]bool {
	names := map[string]bool{"help": true, "completion": true}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
		for _, alias := range c.Aliases {
			names[alias] = true
		}
	}
	return names
}

// defaultArgs picks the subcommand when none is given: lambda under the
// Lambda runtime, report otherwise. Leading flags select report unless a
// subcommand follows them.
func defaultArgs(args []string, commands map[string]bool, onLambda bool) []string {
	if len(args) == 0 {
		if onLambda {
			return []string{"lambda"}
		}
		return []string{"report"}
	}

	first := args[0]
	if !strings.HasPrefix(first, "-") {
		return args
	}
	switch first {
	case "-h", "--help", "-v", "--version":
		return args
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if commands[arg] {
			return args
		}
	}
	return append([]string{"report"}, args...)
}

// applyEnvDefaults fills flags that were not set on the command line from
// ROOMUTIL_<FLAG> environment variables.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if value, ok := os.LookupEnv(key); ok && value != "" {
			if err := flags.Set(f.Name, value); err != nil {
				firstErr = fmt.Errorf("invalid %s: %w", key, err)
			}
		}
	})
	return firstErr
}

// newLogger builds the logger for a command from the persistent log flags.
// Commands pick the writer: stdio serving must keep stdout for the protocol.
func newLogger(w io.Writer) (*slog.Logger, error) {
	logger, err := logging.NewLogger(w, global.logLevel, global.logFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&global.paths.Rooms, "rooms", global.paths.Rooms, "Rooms configuration file")
	flags.StringVar(&global.paths.AsanaConfig, "asana-config", global.paths.AsanaConfig, "Asana credentials file")
	flags.StringVar(&global.paths.ClientSecret, "client-secret", global.paths.ClientSecret, "Google OAuth client secret file")
	flags.StringVar(&global.paths.Token, "token-file", global.paths.Token, "Google OAuth token cache file")
	flags.StringVar(&global.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&global.logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLambdaCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
