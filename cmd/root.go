package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfgFile string
	logFile string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "posture",
	Short: "Passive security-posture scanner for web targets (safe, unauthenticated probes only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".posture-cli")
			viper.SetConfigType("yaml")
		}
		_ = viper.ReadInConfig()

		if logFile == "" {
			logFile = viper.GetString("log_file")
		}

		var err error
		logger, err = buildLogger(logFile)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger returns a production logger, routed through a size-rotated
// file when one is configured.
func buildLogger(file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewProduction()
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		zapcore.InfoLevel,
	)
	return zap.New(core), nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.posture-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write structured logs to this file (rotated) instead of stderr")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
