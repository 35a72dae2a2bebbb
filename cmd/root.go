package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-interactor/internal/config"
	"github.com/deploymenttheory/go-interactor/internal/logger"
	"github.com/deploymenttheory/go-interactor/pkg/organizer"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

var cfgFile string

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "go-interactor",
	Short: "Run composed workflows of single-purpose steps",
	Long: `go-interactor runs workflows made of small single-purpose steps.

Steps run in declaration order against one shared context. A step may be
gated by a named guard, the first failing step stops the run, and steps
that already completed are rolled back in reverse order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cmd.Flags().Changed("config") {
			err = config.Reload(cfgFile)
		} else {
			err = config.Initialize("")
		}
		if err != nil {
			return err
		}

		// CLI flags override config settings
		if cmd.Flags().Changed("debug") {
			config.Instance.Debug, _ = cmd.Flags().GetBool("debug")
		}
		if cmd.Flags().Changed("log-format") {
			config.Instance.LogFormat, _ = cmd.Flags().GetString("log-format")
		}

		if err := logger.InitLogger(logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		organizer.SetLogger(logger.Logger.Named("organizer"))

		logger.LogDebug("Configuration loaded", map[string]interface{}{
			"config_file": config.ConfigFile,
			"debug":       config.Instance.Debug,
		})
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")

	rootCmd.AddCommand(runCmd, validateCmd, versionCmd)
}

// versionCmd shows the application version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "go-interactor v%s\n", Version)
	},
}
