// Package main provides the unilang CLI application entry point.
// unilang parses, validates and executes instructions against a registry of commands,
// either from the command line, a batch file or an interactive shell.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"unilang/internal/logger"
	"unilang/internal/output"
	"unilang/internal/version"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override flags, e.g. UNILANG_LOG_LEVEL.
const EnvPrefix = "UNILANG"

// ConfigName is the base name of the optional configuration file.
const ConfigName = ".unilang"

// errCommandFailed signals a failure that has already been reported to the user.
var errCommandFailed = errors.New("command failed")

var (
	logLevel        string
	logFile         string
	testMode        bool
	configFile      string
	manifests       []string
	verbosity       string
	format          string
	continueOnError bool
)

// rootCmd represents the base command. With arguments it executes them as one instruction.
var rootCmd = &cobra.Command{
	Use:   "unilang [instruction...]",
	Short: "unilang - unified command language",
	Long: `unilang parses instructions such as ".math.add a::1 b::2", checks them against
the registered command definitions and executes the bound routines.

Run without arguments to start the interactive shell.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runShell(cmd, args)
		}
		return runArgs(cmd, args)
	},
}

// runCmd executes one instruction line given as a single argument.
var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Execute an instruction line",
	Long:  `Execute one instruction line. Several instructions can be joined with ";;".`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInstruction,
}

// batchCmd represents the batch command for non-interactive script execution.
var batchCmd = &cobra.Command{
	Use:   "batch <script.ul>",
	Short: "Execute a script file in batch mode",
	Long: `Execute a script file with one instruction per line. Blank lines and lines
starting with # are ignored. Execution stops at the first failure unless
--continue-on-error is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// shellCmd represents the shell command (explicit version of default behavior).
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// listCmd lists registered commands.
var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List available commands",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

// helpCmd shows help for one command, or the command listing.
var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show help for a command",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHelp,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		detailed, _ := cmd.Flags().GetBool("detailed")
		if detailed {
			output.Println(version.GetDetailedVersion())
			return
		}
		output.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringVar(&configFile, "config", "", "Config file (default is ./.unilang.yaml)")
	flags.StringArrayVar(&manifests, "manifest", nil, "Load command definitions from a YAML or JSON manifest (repeatable)")
	flags.StringVar(&verbosity, "verbosity", "", "Help verbosity (0-4 or minimal|basic|standard|detailed|comprehensive)")
	flags.StringVar(&format, "format", "auto", "Output format (auto|plain|styled|json)")

	// Instruction arguments such as command::ls -la are passed through untouched.
	rootCmd.Flags().SetInterspersed(false)

	for _, name := range []string{"log-level", "log-file", "test-mode", "verbosity", "format"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}
	if err := viper.BindPFlag("help.verbosity", flags.Lookup("verbosity")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding verbosity flag: %v\n", err)
		os.Exit(1)
	}

	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep executing after a failed line")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")

	rootCmd.AddCommand(runCmd, batchCmd, shellCmd, listCmd, versionCmd)
	rootCmd.SetHelpCommand(helpCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(ConfigName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Configure logger with the merged flag, env and file settings
	if err := logger.Configure(viper.GetString("log-level"), viper.GetString("log-file"), viper.GetBool("test-mode")); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded config file", "path", used)
	}
}

// loadDotEnv loads path into the process environment when it exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
