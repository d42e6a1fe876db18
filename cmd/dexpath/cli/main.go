package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/derr"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"

	// Needs to be in this file which is the main entry of the binary
	_ "github.com/streamingfast/kvdb/store/badger"
)

var RootCmd = &cobra.Command{Use: "dexpath", Short: "Payment path discovery over a decentralized exchange order book", SilenceUsage: true}

func Main() {
	RootCmd.PersistentFlags().StringP("config-file", "c", "./dexpath.yaml", "Configuration file to use. No config file loaded if set to an empty string or if the file does not exist.")
	RootCmd.PersistentFlags().CountP("verbose", "v", "Enables verbose output, debug level logging")

	RootCmd.AddCommand(
		newServeCmd(zlog, tracer),
		newFindPathsCmd(zlog, tracer),
		newTickCmd(zlog, tracer),
		newOrderBookCmd(zlog, tracer),
		newLoadStoreCmd(zlog, tracer),
	)

	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setupCmd(cmd); err != nil {
			return fmt.Errorf("failed to bootstrap system: %w", err)
		}
		return nil
	}

	derr.Check("dexpath", RootCmd.Execute())
}

func setupCmd(cmd *cobra.Command) error {
	level := zap.InfoLevel
	if verbosity, _ := cmd.Flags().GetCount("verbose"); verbosity > 0 {
		level = zap.DebugLevel
	}
	logging.InstantiateLoggers(logging.WithDefaultLevel(level))

	return bindFlags(viper.New(), cmd, sflags.MustGetString(cmd, "config-file"))
}

// bindFlags fills every flag not set on the command line from the
// DEXPATH_* environment or the config file, in that order.
func bindFlags(v *viper.Viper, cmd *cobra.Command, configFile string) error {
	v.SetEnvPrefix("DEXPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file %q: %w", configFile, err)
			}
			zlog.Debug("config file loaded", zap.String("config_file", configFile))
		}
	}

	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}

		if setErr := cmd.Flags().Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("flag %q: %w", f.Name, setErr)
		}
	})
	return err
}
