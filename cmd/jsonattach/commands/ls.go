package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/pkg/cli"
)

var (
	lsLong   bool
	lsFormat string
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List document identifiers",
	Long: `List the identifiers of all documents in the collection.

With --long every document is loaded, and its field count and attachment
size are shown. Any unreadable document then fails the whole listing.

Examples:
  jsonattach ls
  jsonattach ls --long
  jsonattach ls --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseListFormat(lsFormat)
		if err != nil {
			return err
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if !lsLong {
			ids, err := s.repo.AllIdentifiers(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, len(ids))
			for i, id := range ids {
				names[i] = id.String()
			}
			if format != cli.FormatTable {
				return cli.Output(names, cli.OutputOptions{Format: format})
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		}

		docs, err := s.repo.All(cmd.Context())
		if err != nil {
			return err
		}
		if format != cli.FormatTable {
			out := make([]documentView, len(docs))
			for i, d := range docs {
				out[i] = viewOf(d)
			}
			return cli.Output(out, cli.OutputOptions{Format: format})
		}
		tbl := cli.NewTable("ID", "FIELDS", "ATTACHMENT")
		for _, d := range docs {
			size := "-"
			if b, ok := d.Attachment(); ok {
				size = cli.FormatBytesInt(len(b))
			}
			tbl.Append(cli.Truncate(d.ID().String(), 60), strconv.Itoa(len(d.Fields)), size)
		}
		return cli.Output(tbl, cli.OutputOptions{Format: cli.FormatTable})
	},
}

// parseListFormat accepts table (the default), json and yaml.
func parseListFormat(s string) (cli.OutputFormat, error) {
	if s == "" {
		return cli.FormatTable, nil
	}
	f, err := cli.ParseOutputFormat(s)
	if err != nil {
		return "", err
	}
	if f == cli.FormatRaw {
		return "", fmt.Errorf("unsupported output format for listings: %s", s)
	}
	return f, nil
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "load documents and show details")
	lsCmd.Flags().StringVar(&lsFormat, "format", "", "output format: table, json or yaml")
	rootCmd.AddCommand(lsCmd)
}
