package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zhihu_answer_publisher/display"
	"zhihu_answer_publisher/httpclient"
	"zhihu_answer_publisher/publisher"
	"zhihu_answer_publisher/target"
)

var (
	flagTargetID   string
	flagTargetType string
	flagPanelDir   string
)

var publishCmd = &cobra.Command{
	Use:   "publish <file.md>",
	Short: "Publish a Markdown answer to a question or an existing answer",
	Long: `Publish renders the document, asks which target to publish to, submits
the answer and writes the page Zhihu renders for it to the panel directory.

The target comes from --target-id, or else from the document's front matter
(target.id, target.type). Otherwise the targets from the config (and
collection_url) are listed and one is picked by number. An empty line cancels
without sending anything.

Examples:
  zhihu-publisher publish answer.md
  zhihu-publisher publish answer.md --target-id 42 --target-type question
  zhihu-publisher publish answer.md --target-id 9 --target-type answer`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&flagTargetID, "target-id", "", "publish to this question or answer id without prompting")
	publishCmd.Flags().StringVar(&flagTargetType, "target-type", string(target.KindQuestion), "type of --target-id: question or answer")
	publishCmd.Flags().StringVar(&flagPanelDir, "panel-dir", "", "directory for result pages (default: config panel_dir)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	client := newHTTPClient(cfg, logger)
	resolver, err := publishResolver(cmd, cfg, client, doc.Target)
	if err != nil {
		return err
	}

	dir := flagPanelDir
	if dir == "" {
		dir = cfg.PanelDir
	}
	surface, err := display.NewDir(dir)
	if err != nil {
		return err
	}

	pub, err := buildPublisher(cfg, client, surface, resolver, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	res, err := pub.Publish(cmd.Context(), doc.Body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "result page: %s\n", res.Panel.URL())
	return nil
}

// publishResolver prefers --target-id, then the document's front matter, then
// asks on the terminal.
func publishResolver(cmd *cobra.Command, cfg publisher.Config, client httpclient.Doer, fromDoc *target.Target) (publisher.TargetResolver, error) {
	if flagTargetID != "" {
		kind := target.Kind(flagTargetType)
		if kind != target.KindQuestion && kind != target.KindAnswer {
			return nil, fmt.Errorf("--target-type must be %q or %q", target.KindQuestion, target.KindAnswer)
		}
		return target.Fixed{ID: target.ID(flagTargetID), Type: kind}, nil
	}
	if fromDoc != nil {
		return target.Fixed(*fromDoc), nil
	}

	targets, err := buildCollection(cfg, client, false)
	if err != nil {
		return nil, err
	}
	return target.NewResolver(targets, target.NewPromptSelector(os.Stdin, cmd.ErrOrStderr()))
}
