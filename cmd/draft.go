package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zhihu_answer_publisher/generator"
)

var (
	flagQuestion    string
	flagDetail      string
	flagOutline     []string
	flagWords       int
	flagTone        string
	flagAudience    string
	flagConstraints []string
	flagOut         string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a Markdown answer with the configured LLM",
	Long: `Draft asks the configured LLM for a Markdown answer to a question. The
result goes to stdout or to --out, ready for preview and publish.

Examples:
  zhihu-publisher draft --question "Go 适合写 CLI 吗？" --words 800
  zhihu-publisher draft --question "..." --outline 部署,并发 --out answer.md`,
	Args: cobra.NoArgs,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().StringVar(&flagQuestion, "question", "", "question to answer (required)")
	draftCmd.Flags().StringVar(&flagDetail, "detail", "", "question description")
	draftCmd.Flags().StringSliceVar(&flagOutline, "outline", nil, "points to cover, comma separated")
	draftCmd.Flags().IntVar(&flagWords, "words", 0, "target length in characters")
	draftCmd.Flags().StringVar(&flagTone, "tone", "", "tone of the answer")
	draftCmd.Flags().StringVar(&flagAudience, "audience", "", "intended readers")
	draftCmd.Flags().StringArrayVar(&flagConstraints, "constraint", nil, "extra requirement, repeatable")
	draftCmd.Flags().StringVar(&flagOut, "out", "", "write the answer to this file instead of stdout")
	_ = draftCmd.MarkFlagRequired("question")
}

func runDraft(cmd *cobra.Command, _ []string) error {
	newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		return err
	}

	sess := generator.NewSession("cli", generator.Spec{
		Question:    flagQuestion,
		Detail:      flagDetail,
		Outline:     flagOutline,
		Tone:        flagTone,
		Audience:    flagAudience,
		Words:       flagWords,
		Constraints: flagConstraints,
	}, agent)
	draft, err := sess.Propose(cmd.Context())
	if err != nil {
		return err
	}

	if flagOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), draft.Markdown)
		return nil
	}
	if err := os.WriteFile(flagOut, []byte(draft.Markdown+"\n"), 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "draft written to %s\n", flagOut)
	return nil
}
