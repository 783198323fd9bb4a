package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"userdata/internal/logging"
	"userdata/internal/users"
)

func newUsersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Print the user registry the server would load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			registry, err := users.Initialize(cfg.UserDirectory, cfg.MultiUser, logging.Nop())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printUsers(out, registry, cfg.UserDirectory, isTerminal(out))
			return nil
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printUsers(w io.Writer, registry users.Registry, root string, useColor bool) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if !useColor {
		bold.DisableColor()
		cyan.DisableColor()
		gray.DisableColor()
	}

	mode := "single-user"
	if registry.MultiUser() {
		mode = "multi-user"
	}
	fmt.Fprintf(w, "%s %s (%d users)\n", bold.Sprint("Mode:"), mode, registry.Len())
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Root:"), root)

	if registry.Len() == 0 {
		fmt.Fprintln(w, gray.Sprintf("no users in %s", users.UsersFilePath(root)))
		return
	}

	width := 0
	for _, id := range registry.IDs() {
		if len(id) > width {
			width = len(id)
		}
	}
	for _, id := range registry.IDs() {
		label, _ := registry.Lookup(id)
		fmt.Fprintf(w, "  %s  %s\n", cyan.Sprintf("%-*s", width, id), label)
	}
}
