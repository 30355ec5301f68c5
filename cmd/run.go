package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/app"
	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/evaluation"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
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
	opts := app.Options{
		Catalog:   lib,
		Chats:     conversation.NewDriver(provider, e.log),
		Evaluator: evaluation.New(provider, e.store.PracticeLogRepo(), e.cfg.Language, e.log),
		History:   e.store.PracticeHistory(),
		Persona:   persona.Options{Language: e.cfg.Language},
		Timeout:   llmCfg.Timeout,
		Log:       e.log,
	}

	e.log.Info("starting TUI", "language", e.cfg.Language)
	return app.Run(opts)
}
