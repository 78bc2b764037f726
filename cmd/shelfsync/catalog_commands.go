package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/shelfsync/internal/report"
)

func newLibrariesCommand(ctx *commandContext) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "List the libraries of a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client(server)
			if err != nil {
				return err
			}
			libs, err := client.GetLibraries(cmd.Context())
			if err != nil {
				return fmt.Errorf("list libraries: %w", err)
			}
			return report.WriteLibraries(cmd.OutOrStdout(), libs)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Configured server name")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func newItemsCommand(ctx *commandContext) *cobra.Command {
	var server string
	var libraries []string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the items of a server",
		Long: `List every item of a server, or of the libraries given with --library.
Items are listed in server order with duration, size and available formats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client(server)
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			items, err := svc.LoadCatalog(cmd.Context(), client, trimAll(libraries))
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			return report.WriteItems(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Configured server name")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Library ID to list (repeatable)")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

// trimAll drops blank values and splits comma-separated ones.
func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
