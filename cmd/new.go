package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/postpress/internal/scaffold"
)

var (
	newDate    string
	newTags    string
	newExcerpt string
	newCover   string
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Creates a new post with a front matter block",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := scaffold.NewPost(appConfig.PostsPath(), scaffold.Post{
			Title:   strings.Join(args, " "),
			Date:    newDate,
			Tags:    scaffold.SplitTags(newTags),
			Excerpt: newExcerpt,
			Cover:   newCover,
		}, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Created new post: %s\n", path)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newDate, "date", "", "post date as YYYY-MM-DD (default today)")
	newCmd.Flags().StringVar(&newTags, "tags", "", `comma separated tags, e.g. "go,web"`)
	newCmd.Flags().StringVar(&newExcerpt, "excerpt", "", "short summary shown on the index")
	newCmd.Flags().StringVar(&newCover, "cover", "", "cover image URL")
	newCmd.Flags().String("posts", "", "posts directory (default ./posts)")
	rootCmd.AddCommand(newCmd)
}
