package main

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/artifact"
)

func newCmdArtifact() *cobra.Command {
	c := &cobra.Command{
		Use:   "artifact",
		Short: "Manage run artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdArtifactCreate())
	c.AddCommand(newCmdArtifactList())
	c.AddCommand(newCmdArtifactInspect())
	c.AddCommand(newCmdArtifactLatest())
	return c
}

func newCmdArtifactCreate() *cobra.Command {
	var (
		in   artifact.CreateInput
		file string
	)
	c := &cobra.Command{
		Use:   "create <key>",
		Short: "Store an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "artifact.create", args[0])
			defer func() { cleanup(err) }()
			if file != "" {
				if in.Data != "" {
					return errors.New("--data and --file are mutually exclusive")
				}
				b, err := afero.ReadFile(appFs, file)
				if err != nil {
					return err
				}
				in.Data = string(b)
			}
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID, in.Key = ws, args[0]
			out, err := svc.Artifacts.Create(ctx, &in)
			if err != nil {
				return err
			}
			console(cmd).Success("Created %s artifact %q (%s).", out.Artifact.Type, out.Artifact.Key, out.Artifact.ID)
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.Type, "type", model.ArtifactMarkdown, "Artifact type ("+model.ArtifactMarkdown+"|"+model.ArtifactTable+")")
	f.StringVar(&in.Description, "description", "", "Artifact description")
	f.StringVar(&in.Data, "data", "", "Artifact content")
	f.StringVar(&file, "file", "", "Read artifact content from this file")
	f.StringVar(&in.FlowRunID, "flow-run", "", "Associate with this flow run")
	return c
}

func newCmdArtifactList() *cobra.Command {
	var in artifact.ListInput
	c := &cobra.Command{
		Use:   "ls",
		Short: "List artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID = ws
			out, err := svc.Artifacts.List(cmd.Context(), &in)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Artifacts))
			for _, a := range out.Artifacts {
				created := a.CreatedAt
				rows = append(rows, []string{a.ID, a.Key, a.Type, orDash(a.FlowRunID), formatTime(&created)})
			}
			console(cmd).Table([]string{"id", "key", "type", "flow run", "created"}, rows)
			return nil
		},
	}
	c.Flags().StringVar(&in.Key, "key", "", "Only artifacts with this key")
	c.Flags().StringVar(&in.FlowRunID, "flow-run", "", "Only artifacts of this flow run")
	return c
}

func printArtifact(cmd *cobra.Command, a *model.Artifact, asJSON bool) error {
	if asJSON {
		return printJSON(cmd, a)
	}
	console(cmd).Println(a.Data)
	return nil
}

func newCmdArtifactInspect() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Artifacts.Get(cmd.Context(), &artifact.GetInput{WorkspaceID: ws, ID: args[0]})
			if err != nil {
				return err
			}
			return printArtifact(cmd, out.Artifact, asJSON)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print the artifact record as JSON")
	return c
}

func newCmdArtifactLatest() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "latest <key>",
		Short: "Print the most recent artifact with a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Artifacts.Latest(cmd.Context(), &artifact.LatestInput{WorkspaceID: ws, Key: args[0]})
			if err != nil {
				return err
			}
			return printArtifact(cmd, out.Artifact, asJSON)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print the artifact record as JSON")
	return c
}
