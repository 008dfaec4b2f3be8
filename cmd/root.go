package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once the configuration is loaded.
type app struct {
	v       *viper.Viper
	envFile string
	cfg     Config
	logger  *slog.Logger
	stdout  io.Writer
}

// NewRootCommand returns the kargo CLI with its serve, migrate and seed
// subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), stdout: os.Stdout}

	root := &cobra.Command{
		Use:           "kargo",
		Short:         "Courier order lifecycle and live tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.stdout = cmd.OutOrStdout()
			cfg, err := LoadConfig(a.v, a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = NewLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional dotenv file read before the environment")

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newSeedCommand(a),
	)

	return root
}
