package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load methodology, checklist and cases from a YAML or JSON file",
	Long: `Load reference data into the database.

The file carries a semantic "version" (major ` + seed.SupportedMajor + `) and any of
"methodology", "checklist" and "cases". The methodology list is replaced as a
whole; the checklist and cases are upserted by name and id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := seed.Load(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			fmt.Printf("%s is valid: %d steps, checklist %v, %d cases\n",
				args[0], len(doc.Methodology), doc.Checklist != nil, len(doc.Cases))
			return nil
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rep, err := seed.Apply(cmd.Context(), e.store.ReferenceRepo(), doc)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		e.log.Info("seed applied", "file", args[0], "steps", rep.Steps, "cases", rep.Cases)

		if rep.Steps > 0 {
			fmt.Printf("Methodology: %d steps\n", rep.Steps)
		}
		if rep.Checklist != "" {
			fmt.Printf("Checklist:   %s\n", rep.Checklist)
		}
		fmt.Printf("Cases:       %d\n", rep.Cases)
		for _, id := range rep.GeneratedIDs {
			fmt.Printf("  assigned id %s\n", id)
		}
		for _, w := range rep.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("dry-run", false, "Validate the file without writing")
}
