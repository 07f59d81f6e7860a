package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	indexrepo "github.com/kailas-cloud/esdata/internal/repository/index"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
)

func newMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapping [entity...]",
		Short: "Print the create-index request of registered entities",
		Long: `Print the index definition each entity's index is created with.
The cluster is not contacted.

Examples:
  # Every entity listed in the config's schema files
  esdata mapping

  # One entity from an explicit schema file
  esdata mapping --schema schemas/library.yaml book`,
		RunE: runMapping,
	}
}

func newEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure [entity...]",
		Short: "Create missing indices and update existing mappings",
		Long: `Create the index of every given entity (all registered entities when
none are given) or put the current mapping on an index that already exists.`,
		RunE: runEnsure,
	}
}

func runMapping(cmd *cobra.Command, args []string) error {
	paths := schemaPaths
	logger := zap.NewNop()
	if len(paths) == 0 {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()
		paths, logger = cfg.Schemas.Paths, l
	}

	mc, err := newMappingContext(paths, logger)
	if err != nil {
		return err
	}
	// Definitions are derived locally, so the index repository needs no store.
	svc := entityuc.New(mc, indexrepo.New(nil))
	return printMappings(cmd.OutOrStdout(), svc, args)
}

func printMappings(w io.Writer, svc *entityuc.Service, types []string) error {
	if len(types) == 0 {
		types = svc.Types()
	}
	for _, t := range types {
		def, err := svc.Mapping(t)
		if err != nil {
			return err
		}
		body, err := def.Body()
		if err != nil {
			return fmt.Errorf("encode %s: %w", t, err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			return fmt.Errorf("indent %s: %w", t, err)
		}
		fmt.Fprintf(w, "# %s\nPUT /%s\n%s\n\n", t, def.Name, pretty.String())
	}
	return nil
}

func runEnsure(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	mc, err := newMappingContext(resolveSchemaPaths(cfg), logger)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := entityuc.New(mc, indexrepo.New(store))
	ctx := cmd.Context()

	var results []entityuc.EnsureResult
	if len(args) == 0 {
		results, err = svc.EnsureAll(ctx)
		if err != nil {
			return err
		}
	} else {
		for _, t := range args {
			r, err := svc.Ensure(ctx, t)
			if err != nil {
				return err
			}
			results = append(results, r)
		}
	}
	return printEnsureResults(cmd.OutOrStdout(), results)
}

func printEnsureResults(w io.Writer, results []entityuc.EnsureResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tINDEX\tACTION")
	for _, r := range results {
		action := "updated"
		if r.Created {
			action = "created"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Type, r.Index, action)
	}
	return tw.Flush()
}
