package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zhihu_answer_publisher/display"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file.md>",
	Short: "Render a Markdown answer into a local preview page",
	Long: `Preview renders the document with the plain renderer and highlighted code
into the preview template. Nothing is sent to Zhihu.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&flagPanelDir, "panel-dir", "", "directory for the preview page (default: config panel_dir)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument(args[0])
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
	pub, err := buildPublisher(cfg, newHTTPClient(cfg, logger), surface, nil, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	panel, err := pub.Preview(cmd.Context(), doc.Body)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), panel.URL())
	return nil
}
