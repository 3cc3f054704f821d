package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ca-srg/osrequests/internal/search/result"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a saved _search response",
	Long: `
Validate a _search response saved as JSON and print its typed summary.
Use - to read from standard input.

Example:
  curl -s localhost:9200/books/_search -d @body.json | osrequests parse -
`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	res, err := result.Parse(data)
	if err != nil {
		return err
	}
	summary, err := summarize(res)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), summary)
}
