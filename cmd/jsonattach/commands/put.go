package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/cmd/jsonattach/internal/document"
	"github.com/haivivi/jsonattach/pkg/cli"
	"github.com/haivivi/jsonattach/pkg/entity"
)

var (
	putFile       string
	putSet        []string
	putAttachment string
)

var putCmd = &cobra.Command{
	Use:   "put <id>",
	Short: "Store a document",
	Long: `Store a document, replacing any document with the same identifier.

Fields come from a YAML or JSON file (-f, "-" for stdin) and from --set
assignments, which are applied afterwards. --attachment stores a file next
to the record. Without --attachment an existing attachment is kept.

Examples:
  jsonattach put com.example.app -f app.yaml
  jsonattach put com.example.app --set name=App --set version=3
  jsonattach put com.example.app -f app.json --attachment icon.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := entity.NewIdentifier(args[0])
		if err != nil {
			return err
		}

		doc := document.New(id, nil)
		if putFile == "-" && cli.IsTerminal(os.Stdin) {
			cli.PrintWarning(os.Stderr, "reading fields from the terminal, finish with Ctrl-D")
		}
		if putFile != "" {
			fields, err := cli.LoadFields(putFile)
			if err != nil {
				return err
			}
			doc.Fields = fields
		}
		for _, a := range putSet {
			if err := doc.Set(a); err != nil {
				return err
			}
		}
		if putAttachment != "" {
			data, err := os.ReadFile(putAttachment)
			if err != nil {
				return fmt.Errorf("failed to read attachment: %w", err)
			}
			doc = doc.WithAttachment(entity.Blob(data))
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.repo.Add(cmd.Context(), doc); err != nil {
			return err
		}
		if b, ok := doc.Attachment(); ok {
			cli.PrintSuccess(os.Stdout, "stored %s with %s attachment", id, cli.FormatBytesInt(len(b)))
		} else {
			cli.PrintSuccess(os.Stdout, "stored %s", id)
		}
		return nil
	},
}

func init() {
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", "YAML or JSON file with the document fields")
	putCmd.Flags().StringArrayVar(&putSet, "set", nil, "set a field, key=value (repeatable)")
	putCmd.Flags().StringVar(&putAttachment, "attachment", "", "file to store as the attachment")
	rootCmd.AddCommand(putCmd)
}
