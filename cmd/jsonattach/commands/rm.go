package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/pkg/cli"
	"github.com/haivivi/jsonattach/pkg/entity"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Remove documents",
	Long: `Remove documents and their attachments. Removing a document that does
not exist succeeds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]entity.Identifier, len(args))
		for i, a := range args {
			id, err := entity.NewIdentifier(a)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		for _, id := range ids {
			removed, err := s.repo.Remove(cmd.Context(), id)
			if err != nil {
				return describe(err, id)
			}
			cli.PrintSuccess(os.Stdout, "removed %s", removed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
