package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/postpress/internal/build"
	"github.com/Bitlatte/postpress/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the site from posts, the site template and static assets",
	Long: `The build command reads the Markdown posts in the posts directory,
extracts their metadata (front matter, or a "# Title" and date line),
renders each into public/posts/<slug>.html, splices the post list into
the site template as public/index.html and copies the assets directory.
The output directory is removed and recreated on every build.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuildProcess(appConfig)
		return err
	},
}

// runBuildProcess builds once. A missing posts directory is reported and
// is not an error.
func runBuildProcess(cfg config.Config) (*build.Report, error) {
	report, err := build.Run(cfg, build.WithLogger(slog.Default()))
	if errors.Is(err, build.ErrNoSources) {
		fmt.Printf("No posts directory at %s, skipping build (add .md files there to get started).\n", cfg.PostsPath())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fmt.Printf("Built %d post(s) -> %s\n", report.Documents, report.Output)
	return report, nil
}

func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("posts", "", "posts directory (default ./posts)")
	cmd.Flags().String("out", "", "output directory (default ./public)")
	cmd.Flags().String("assets", "", "static assets directory (default ./assets)")
	cmd.Flags().String("template", "", "site index template (default ./templates/index.html)")
	cmd.Flags().String("metadata", "", "metadata parser: auto, frontmatter or positional")
	cmd.Flags().String("title", "", "site title")
}

func init() {
	addPathFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
