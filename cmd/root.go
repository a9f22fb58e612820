package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Bitlatte/postpress/internal/config"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
)

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"root":     "root",
	"posts":    "postsDir",
	"out":      "outputDir",
	"assets":   "assetsDir",
	"template": "template",
	"metadata": "metadata",
	"title":    "siteTitle",
}

var rootCmd = &cobra.Command{
	Use:   "postpress",
	Short: "postpress - markdown posts in, static blog out",
	Long: `postpress reads the Markdown posts in ./posts, renders each into a page,
builds an index page from the site template and copies ./assets,
producing a deployable directory (default ./public).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return initializeConfig(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "project root that relative paths resolve against")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	def := config.Default()
	v.SetDefault("root", def.Root)
	v.SetDefault("postsDir", def.PostsDir)
	v.SetDefault("outputDir", def.OutputDir)
	v.SetDefault("assetsDir", def.AssetsDir)
	v.SetDefault("assetsDest", def.AssetsDest)
	v.SetDefault("template", def.TemplatePath)
	v.SetDefault("extension", def.Extension)
	v.SetDefault("siteTitle", def.SiteTitle)
	v.SetDefault("lang", def.Lang)
	v.SetDefault("stylesheet", def.Stylesheet)
	v.SetDefault("indexHeading", def.IndexHeading)
	v.SetDefault("indexMarker", def.IndexMarker)
	v.SetDefault("metadata", def.Metadata)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("POSTPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Changed {
			bindErr = errors.Join(bindErr, v.BindPFlag(key, f))
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
		slog.Debug("No config file found, using defaults and environment")
	} else {
		slog.Debug("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	appConfig = config.Config{}
	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}
