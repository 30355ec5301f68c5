package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/evaluation"
	"github.com/tu613/vet-learning-app/internal/grounding"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/session"
)

var rehearseCmd = &cobra.Command{
	Use:   "rehearse <case-id>",
	Short: "Practice one case on the command line, without the TUI",
	Long: `Chat with the simulated owner line by line.

Type a question and press Enter. "/end" finishes the session and prints the
evaluation; "/quit" leaves without evaluating.`,
	Args: cobra.ExactArgs(1),
	RunE: runRehearse,
}

func init() {
	rehearseCmd.Flags().String("name", "", "Your name (required)")
	rehearseCmd.Flags().String("role", string(session.RoleStudent), "Your role: Student or Instructor")
	_ = rehearseCmd.MarkFlagRequired("name")
}

func findCase(ctx context.Context, lib *refdata.Library, id string) (refdata.CaseScenario, error) {
	cases, err := lib.Cases(ctx)
	if err != nil {
		return refdata.CaseScenario{}, fmt.Errorf("list cases: %w", err)
	}
	for _, c := range cases {
		if c.ID == id {
			return c, nil
		}
	}
	return refdata.CaseScenario{}, fmt.Errorf("no case with id %q (see `vetlearn cases`)", id)
}

func runRehearse(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	roleName, _ := cmd.Flags().GetString("role")
	role := session.ParseRole(roleName)
	if strings.TrimSpace(name) == "" {
		return session.ErrBlankName
	}

	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	provider, llmCfg, err := e.newProvider(ctx)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}

	lib := refdata.NewLibrary(e.store.ReferenceRepo(), e.cfg.ChecklistName, e.cfg.ReferenceTTL, e.log)
	c, err := findCase(ctx, lib, args[0])
	if err != nil {
		return err
	}

	prompt := persona.Build(c, persona.Options{Language: e.cfg.Language})
	driver := conversation.NewDriver(provider, e.log)
	if err := driver.EnsureSession(ctx, prompt.CaseID, prompt.Text); err != nil {
		return fmt.Errorf("start conversation: %s", llm.Describe(err))
	}

	callCtx := func() (context.Context, context.CancelFunc) {
		if llmCfg.Timeout > 0 {
			return context.WithTimeout(ctx, llmCfg.Timeout)
		}
		return context.WithCancel(ctx)
	}

	fmt.Printf("Case: %s\n%s\n\n", c.Title(), persona.Caption(c))
	fmt.Println(`Ask your questions. "/end" to finish and evaluate, "/quit" to leave.`)

	var transcript conversation.Transcript
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			fmt.Println("Session discarded.")
			return nil
		case "/end":
			return finishRehearsal(ctx, callCtx, e, provider, lib, c, session.User{Name: name, Role: role}, transcript)
		}

		sendCtx, cancel := callCtx()
		next, err := driver.SendUserTurn(sendCtx, transcript, line)
		cancel()
		if err != nil {
			fmt.Printf("\033[31mMessage not sent.\033[0m %s\n", llm.Describe(err))
			continue
		}
		transcript = next
		fmt.Printf("Owner: %s\n", transcript[len(transcript)-1].Content)
	}
}

func finishRehearsal(
	ctx context.Context,
	callCtx func() (context.Context, context.CancelFunc),
	e *env,
	provider llm.Provider,
	lib *refdata.Library,
	c refdata.CaseScenario,
	user session.User,
	transcript conversation.Transcript,
) error {
	ref := lib.Reference(ctx)
	for _, w := range ref.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	fmt.Println("\nEvaluating...")
	ev := evaluation.New(provider, e.store.PracticeLogRepo(), e.cfg.Language, e.log)
	evalCtx, cancel := callCtx()
	defer cancel()
	res, err := ev.Evaluate(evalCtx, evaluation.Input{
		UserName:           user.Name,
		UserRole:           string(user.Role),
		Case:               c,
		Transcript:         transcript,
		MethodologyContext: grounding.FormatMethodology(ref.Steps),
		ChecklistContext:   grounding.FormatChecklist(ref.Stages),
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %s", llm.Describe(err))
	}

	sep := strings.Repeat("─", 60)
	fmt.Println(sep)
	fmt.Println(res.Feedback)
	fmt.Println(sep)
	fmt.Printf("Evaluated by %s\n", res.Model)
	if res.LogErr != nil {
		fmt.Println(session.NoticeLogNotSaved)
	}
	return nil
}
