// Package cli provides command-line interface setup for unitest.
package cli

import (
	"fmt"

	"unilang/cmd/unitest/internal/golden"
	"unilang/internal/version"

	"github.com/spf13/cobra"
)

// App represents the unitest CLI application
type App struct {
	Config *golden.Config
}

// NewApp creates a new unitest CLI application
func NewApp() *App {
	return &App{Config: golden.NewConfig()}
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unitest",
		Short: "End-to-end testing tool for the unilang CLI",
		Long: `unitest runs unilang scripts in test mode and compares their output with
golden files. It can record, run, and diff test cases.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.Config.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&app.Config.TestDir, "test-dir", golden.DefaultTestDir, "Test directory")
	rootCmd.PersistentFlags().StringVar(&app.Config.UnilangCmd, "unilang-cmd", golden.DefaultUnilangCmd, "unilang command to test (tries ./bin/unilang, then PATH)")
	rootCmd.PersistentFlags().IntVar(&app.Config.TestTimeout, "timeout", golden.DefaultTestTimeout, "Test timeout in seconds")

	app.addGoldenFileCommands(rootCmd)
	app.addVersionCommand(rootCmd)
	return rootCmd
}

// addGoldenFileCommands adds golden file testing commands
func (app *App) addGoldenFileCommands(rootCmd *cobra.Command) {
	recordCmd := &cobra.Command{
		Use:   "record <testname>",
		Short: "Record a new test case",
		Long: `Record a test case by running its .ul script and saving the output
as the golden .expected file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return golden.NewSuite(app.Config).RecordTest(args[0])
		},
	}

	acceptCmd := &cobra.Command{
		Use:   "accept <testname>",
		Short: "Accept current output as golden",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return golden.NewSuite(app.Config).RecordTest(args[0])
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <testname>",
		Short: "Run a specific test case",
		Long: `Run a test case and compare its output with the golden file.
Returns exit code 0 if the test passes, non-zero if it fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return golden.NewSuite(app.Config).RunTest(args[0])
		},
	}

	runAllCmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run all test cases",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return golden.NewSuite(app.Config).RunAllTests()
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff <testname>",
		Short: "Show differences between expected and actual output",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return golden.NewSuite(app.Config).ShowDiff(args[0])
		},
	}

	rootCmd.AddCommand(recordCmd, acceptCmd, runCmd, runAllCmd, diffCmd)
}

// addVersionCommand adds the version command
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			detailed, _ := cmd.Flags().GetBool("detailed")
			if detailed {
				fmt.Fprintf(cmd.OutOrStdout(), "unitest %s\n", version.GetDetailedVersion())
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unitest %s\n", version.GetVersion())
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	rootCmd.AddCommand(versionCmd)
}
