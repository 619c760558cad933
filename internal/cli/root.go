package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App carries the configuration and logger shared by the commands of one root.
type App struct {
	cfg     *viper.Viper
	logger  *slog.Logger
	version string
}

func NewRootCommand(version string) *cobra.Command {
	app := &App{cfg: newConfig(), logger: slog.Default(), version: version}

	rootCmd := &cobra.Command{
		Use:   "serialver",
		Short: "Compute default serialVersionUIDs of Java classes from source",
		Long: `Serialver predicts the serialVersionUID the JVM assigns to a Serializable
class that does not declare one. It works from source: declared members and
the members a compiler synthesizes are hashed the way
java.io.ObjectStreamClass does, without compiling anything.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := OptionalStringFlag(cmd, "config")
			if err != nil {
				return err
			}
			if err := readConfig(app.cfg, configPath); err != nil {
				return err
			}
			app.logger = newLogger(app.cfg)
			app.logger.Debug("starting", "command", cmd.Name(), "version", version, "config", app.cfg.ConfigFileUsed())
			return nil
		},
	}
	app.configureRootFlags(rootCmd)

	computeCmd := &cobra.Command{
		Use:   "compute <file.java>...",
		Short: "Compute the default serialVersionUID of the classes in the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  app.RunCompute,
	}
	computeCmd.Flags().String("class", "", "Only compute the class with this simple, canonical or binary name")
	computeCmd.Flags().Bool("declare", false, "Print the field declaration for each class that needs one")
	computeCmd.Flags().Bool("explain", false, "Print the class descriptor that is hashed")
	computeCmd.Flags().StringArray("source-path", []string{}, "Directory whose sources join the resolution scope (repeatable)")

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Report computed and declared identifiers of every serializable class",
		Args:  cobra.MaximumNArgs(1),
		RunE:  app.RunScan,
	}

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Fail when a serializable class does not declare serialVersionUID",
		Args:  cobra.MaximumNArgs(1),
		RunE:  app.RunCheck,
	}

	statusCmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show whether cached scan results are still fresh",
		Args:  cobra.MaximumNArgs(1),
		RunE:  app.RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default serialver.yaml configuration file",
		RunE:  app.RunInit,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "serialver %s\n", version)
		},
	}

	rootCmd.AddCommand(
		computeCmd,
		scanCmd,
		checkCmd,
		statusCmd,
		initCmd,
		versionCmd,
	)

	return rootCmd
}

func (a *App) configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./"+configFileName+")")

	flags.StringP("format", "f", defaultFormat, "Output format: text|json|jsonl|yaml")
	bindFlagToConfig(a.cfg, flags.Lookup("format"), formatConfigKey)

	flags.Int("target", defaultTarget, "Java release whose synthetic members are predicted (0 = legacy javac, 5 = ldc class literals, 11 = nestmates)")
	bindFlagToConfig(a.cfg, flags.Lookup("target"), targetConfigKey)

	flags.IntP("parallel", "p", defaultRunParallel, "Number of files parsed and scanned concurrently")
	bindFlagToConfig(a.cfg, flags.Lookup("parallel"), runParallelConfigKey)

	flags.StringArrayP("exclude", "x", []string{}, "Ignore rule added to "+ignoreFileName+" (repeatable)")
	bindFlagToConfig(a.cfg, flags.Lookup("exclude"), excludeConfigKey)

	flags.String("cache-dir", defaultCacheDir, "Cache directory, relative to the scanned root")
	bindFlagToConfig(a.cfg, flags.Lookup("cache-dir"), cacheDirConfigKey)

	flags.Bool("no-cache", defaultNoCache, "Disable cached scan results")
	bindFlagToConfig(a.cfg, flags.Lookup("no-cache"), noCacheConfigKey)

	flags.String("log-file", defaultLogFilename, "Log file path")
	bindFlagToConfig(a.cfg, flags.Lookup("log-file"), logFilenameKey)

	flags.BoolP("verbose", "v", defaultLogVerbose, "Log at debug level")
	bindFlagToConfig(a.cfg, flags.Lookup("verbose"), logVerboseKey)
}
