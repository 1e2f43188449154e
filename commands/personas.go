package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confsum/confsum/config"
	"github.com/confsum/confsum/persona"
)

func newListPersonasCmd() *cobra.Command {
	var personaFile string

	cmd := &cobra.Command{
		Use:   "list-personas",
		Short: "List available summarization personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := personaFile
			if path == "" {
				path = config.PersonaFilePath()
			}

			registry, err := persona.LoadRegistry(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range registry.List() {
				// First line of the prompt doubles as the description.
				desc := p.SystemPrompt
				if i := strings.IndexByte(desc, '\n'); i >= 0 {
					desc = desc[:i]
				}
				fmt.Fprintf(out, "%-12s %s\n", p.Name, desc)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&personaFile, "persona-file", "", "YAML file with additional personas (default $PERSONA_FILE, then ./personas.yaml)")

	return cmd
}
