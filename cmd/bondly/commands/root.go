package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "bondly",
	Short: "Bondly companion tools",
	Long: `Command line tools for the Bondly companion.

Credentials are read from the environment or a .env file in the working
directory (GEMINI_API_KEY, ELEVEN_LABS_API_KEY, GOOGLE_APPLICATION_CREDENTIALS).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(lullabyCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(catalogCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
