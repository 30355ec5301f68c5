package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/screens/caseselect"
)

var casesCmd = &cobra.Command{
	Use:   "cases [filter]",
	Short: "List the available cases",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cases, err := e.store.ReferenceRepo().Cases(cmd.Context())
		if err != nil {
			return fmt.Errorf("list cases: %w", err)
		}
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		idx := caseselect.FilterCases(cases, query)
		if len(idx) == 0 {
			fmt.Println("No cases found.")
			return nil
		}

		fmt.Printf("%-24s  %-32s  %-12s  %-14s  %s\n", "ID", "Case", "Species", "Level", "Pet")
		fmt.Println(strings.Repeat("─", 100))
		for _, i := range idx {
			c := cases[i]
			fmt.Printf("%-24s  %-32s  %-12s  %-14s  %s\n",
				truncate(c.ID, 24),
				truncate(c.Title(), 32),
				truncate(c.Field(refdata.FieldSpecies), 12),
				truncate(c.Field(refdata.FieldLevel), 14),
				c.Field(refdata.FieldPetName))
		}
		fmt.Printf("\n%d of %d cases\n", len(idx), len(cases))
		return nil
	},
}
