package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
	"github.com/spektr-org/vizgroup/helpers"
	"github.com/spektr-org/vizgroup/query"
)

type queryOptions struct {
	dir        string
	db         string
	objectType string
	query      string
	format     string
	colorBy    []string
}

func newQueryCmd(a *app) *cobra.Command {
	o := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query objects of a type from a directory or SQLite store",
		Long: `Search objects of one type and print them stamped with "type" and "key".
The query is a JSONPath expression evaluated over the object list.

Examples:
  vizgroup query --dir objects --type metric --query "$[?(@.context.subset == 'train')]"
  vizgroup query --db objects.db --type texts --color-by run.hash --format jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, a, o)
		},
	}
	cmd.Flags().StringVar(&o.dir, "dir", "", "Directory holding <type>.json|yaml|csv files (default: sources.dir)")
	cmd.Flags().StringVar(&o.db, "db", "", "SQLite object store (default: sources.sqlite)")
	cmd.Flags().StringVar(&o.objectType, "type", query.TypeMetric, "Object type")
	cmd.Flags().StringVar(&o.query, "query", "", "JSONPath filter, empty for all objects")
	cmd.Flags().StringVar(&o.format, "format", "json", "Output format: json, pretty, jsonl")
	cmd.Flags().StringSliceVar(&o.colorBy, "color-by", nil, "Color the results by these field paths")
	return cmd
}

func runQuery(cmd *cobra.Command, a *app, o *queryOptions) error {
	if err := checkFormat(o.format, formatJSON, formatPretty, formatJSONL); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	searcher, closeFn, err := a.searcher(ctx, o.dir, o.db)
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := query.NewCollection(o.objectType).Query(ctx, searcher, o.query)
	if err != nil {
		return err
	}
	if len(o.colorBy) > 0 {
		items = a.encoder().Encode(o.objectType, items, encode.Color, engine.ByFieldPaths(o.colorBy...)).Items
	}
	a.log.Info("queried", "type", o.objectType, "matched", len(items))

	if o.format == formatJSONL {
		return writeJSONLines(cmd.OutOrStdout(), items)
	}
	return writeJSON(cmd.OutOrStdout(), items, o.format)
}

// searcher picks the SQLite store when one is named, the directory otherwise.
func (a *app) searcher(ctx context.Context, dir, db string) (query.Searcher, func(), error) {
	if db == "" && dir == "" {
		db = a.cfg.Sources.SQLite
	}
	if db != "" {
		store, err := query.OpenSQLite(ctx, db, a.log.WithName("sqlite"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	if dir == "" {
		dir = a.cfg.Sources.Dir
	}
	return query.NewFileSearcher(dir, a.log.WithName("files")), func() {}, nil
}

type importOptions struct {
	db         string
	objectType string
	files      []string
}

func newImportCmd(a *app) *cobra.Command {
	o := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load record files into a SQLite object store",
		Long: `Append the records of one or more files to a SQLite object store under an
object type, for later use with "vizgroup query --db".

Examples:
  vizgroup import --db objects.db --type metric --file metrics.json --file more.yaml.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db := o.db
			if db == "" {
				db = a.cfg.Sources.SQLite
			}
			if db == "" {
				return errors.New("no object store: pass --db or set sources.sqlite")
			}
			store, err := query.OpenSQLite(ctx, db, a.log.WithName("sqlite"))
			if err != nil {
				return err
			}
			defer store.Close()

			total := 0
			for _, f := range o.files {
				records, err := helpers.Load(f)
				if err != nil {
					return err
				}
				if err := store.Insert(ctx, o.objectType, records...); err != nil {
					return err
				}
				total += len(records)
			}
			a.log.Info("imported", "db", db, "type", o.objectType, "records", total)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.db, "db", "", "SQLite object store (default: sources.sqlite)")
	cmd.Flags().StringVar(&o.objectType, "type", query.TypeMetric, "Object type")
	cmd.Flags().StringSliceVar(&o.files, "file", nil, "Records file, repeatable (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
