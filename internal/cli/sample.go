package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// sampleDocument is the document the editor starts with when no input is
// given.
const sampleDocument = `{
  "user": {
    "name": "John Doe",
    "age": 30,
    "active": true,
    "email": "john@example.com",
    "address": {
      "street": "123 Main St",
      "city": "New York",
      "country": "USA"
    },
    "hobbies": ["reading", "coding", "gaming"]
  }
}`

// sampleCommand prints the sample document.
func (c *CLI) sampleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Print a sample JSON document to try the other commands on",
		Example: `  jsonflow sample | jsonflow build -f tree`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := jsonvalue.MarshalIndent(sampleValue())
			if err != nil {
				return err
			}
			return writeOutput(data, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func sampleValue() jsonvalue.Value {
	return jsonvalue.MustParse(sampleDocument)
}
