package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/cmd/jsonattach/internal/document"
	"github.com/haivivi/jsonattach/pkg/cli"
	"github.com/haivivi/jsonattach/pkg/entity"
)

var (
	getFormat        string
	getAttachmentOut string
)

// documentView is how documents are printed.
type documentView struct {
	ID             string         `json:"id" yaml:"id"`
	Fields         map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	AttachmentSize *int           `json:"attachment_size,omitempty" yaml:"attachment_size,omitempty"`
}

func viewOf(d document.Document) documentView {
	v := documentView{ID: d.ID().String(), Fields: d.Fields}
	if b, ok := d.Attachment(); ok {
		n := len(b)
		v.AttachmentSize = &n
	}
	return v
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a document",
	Long: `Print a document and, with --attachment-out, save its attachment.

Examples:
  jsonattach get com.example.app
  jsonattach get com.example.app --format yaml
  jsonattach get com.example.app --attachment-out icon.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := entity.NewIdentifier(args[0])
		if err != nil {
			return err
		}
		format, err := cli.ParseOutputFormat(getFormat)
		if err != nil {
			return err
		}
		if format == cli.FormatTable || format == cli.FormatRaw {
			return fmt.Errorf("unsupported output format for documents: %s", getFormat)
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		doc, err := s.repo.Entity(cmd.Context(), id)
		if err != nil {
			return describe(err, id)
		}

		if getAttachmentOut != "" {
			b, ok := doc.Attachment()
			if !ok {
				cli.PrintWarning(os.Stderr, "document %q has no attachment; %s not written", id, getAttachmentOut)
			} else if err := cli.OutputBytes(b, getAttachmentOut); err != nil {
				return err
			}
		}
		return cli.Output(viewOf(doc), cli.OutputOptions{Format: format})
	},
}

// describe turns repository errors about one document into messages that
// name the document rather than its file.
func describe(err error, id entity.Identifier) error {
	switch {
	case errors.Is(err, entity.ErrRecordNotFound):
		return fmt.Errorf("document %q not found", id)
	case errors.Is(err, entity.ErrIsDirectory):
		return fmt.Errorf("document %q: %w", id, err)
	case errors.Is(err, entity.ErrDecode):
		return fmt.Errorf("document %q is corrupt: %w", id, err)
	}
	return err
}

func init() {
	getCmd.Flags().StringVar(&getFormat, "format", "json", "output format: json or yaml")
	getCmd.Flags().StringVar(&getAttachmentOut, "attachment-out", "", "write the attachment to this file")
	rootCmd.AddCommand(getCmd)
}
