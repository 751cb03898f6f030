package cli

import "github.com/spf13/cobra"

// Execute runs the modelgen CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "modelgen",
        Short:         "Generate Swift models and requests from Swagger/OpenAPI specs",
        Long:          "modelgen turns the component schemas and operations of a Swagger/OpenAPI document into Swift Codable models and async request wrappers.",
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return cmd.Help()
        },
    }

    flagErrors := func(c *cobra.Command, err error) error {
        return usageErrorf("%v\n\n%s", err, c.UsageString())
    }
    // Convert Cobra flag errors (like unknown flags) into friendly usage errors
    // that also show the command's help text.
    cmd.SetFlagErrorFunc(flagErrors)

    cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
    cmd.PersistentFlags().String("log-format", "", "Log output format on stderr: text|json (default text)")

    for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd()} {
        sub.SetFlagErrorFunc(flagErrors)
        cmd.AddCommand(sub)
    }

    return cmd
}
