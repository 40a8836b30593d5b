package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/colorfulnotion/intcode/program"
	"github.com/spf13/cobra"
)

func (a *app) storeCmd() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the program store",
	}

	var name string
	addCmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a program file to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := program.ReadFile(args[0])
			if err != nil {
				return err
			}
			p.Name = filepath.Base(args[0])
			if name != "" {
				p.Name = name
			}
			s, err := a.programStore()
			if err != nil {
				return err
			}
			h, err := s.Put(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p.Name, h)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Name to store under (default: file name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.programStore()
			if err != nil {
				return err
			}
			entries, err := s.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHASH\tWORDS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Hash.String_short(), e.Words)
			}
			return tw.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <name|0xhash>",
		Short: "Print a stored program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.programStore()
			if err != nil {
				return err
			}
			p, err := s.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), program.Format(p.Image))
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a stored program name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.programStore()
			if err != nil {
				return err
			}
			return s.Delete(args[0])
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs <name|0xhash>",
		Short: "Print the recorded runs of a stored program as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.programStore()
			if err != nil {
				return err
			}
			h, err := s.Resolve(args[0])
			if err != nil {
				return err
			}
			runs, err := s.Runs(h)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		},
	}

	storeCmd.AddCommand(addCmd, listCmd, showCmd, rmCmd, runsCmd)
	return storeCmd
}
