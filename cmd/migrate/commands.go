package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultRevisionDir = "internal/infrastructure/migration/sql"

// migrator is the part of *migration.Runner the commands drive
type migrator interface {
	Plan() *migration.Plan
	ListSchemas(ctx context.Context) ([]string, error)
	EnsureVersionTable(ctx context.Context, schema string) (bool, error)
	Current(ctx context.Context, schema string) (string, error)
	Upgrade(ctx context.Context, schema, target string) (migration.Result, error)
	Downgrade(ctx context.Context, schema, target string) (migration.Result, error)
	Stamp(ctx context.Context, schema, target string) (migration.Result, error)
}

// exitError ends the process with code after the command printed its own report
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var errExit = &exitError{code: 1}

type cli struct {
	out      io.Writer
	logger   *zap.Logger
	logLevel string
	connect  func(ctx context.Context, c *cli) (migrator, error)
	m        migrator
	closers  []func() error
}

// target is the --all / --schema selection shared by most commands
type target struct {
	all    bool
	schema string
}

func (c *cli) close() {
	for _, fn := range c.closers {
		_ = fn()
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *cli) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Multi-tenant migration manager",
		Long:          "Apply, revert and inspect migrations independently for every tenant schema.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.listSchemasCommand(),
		c.currentCommand(),
		c.historyCommand(),
		c.upgradeCommand(),
		c.downgradeCommand(),
		c.stampCommand(),
		c.revisionCommand(),
	)
	return root
}

// prepare validates the schema selection before connecting
func (c *cli) prepare(t *target) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.check(t); err != nil {
			return err
		}
		return c.needDB(cmd, args)
	}
}

// needDB connects on first use
func (c *cli) needDB(cmd *cobra.Command, _ []string) error {
	if c.m != nil {
		return nil
	}
	m, err := c.connect(cmd.Context(), c)
	if err != nil {
		return err
	}
	c.m = m
	return nil
}

func addTargetFlags(cmd *cobra.Command, t *target, verb string) {
	cmd.Flags().BoolVar(&t.all, "all", false, verb+" all tenant schemas")
	cmd.Flags().StringVar(&t.schema, "schema", "", verb+" a specific schema")
}

// check requires --all or --schema. --all wins when both are given.
func (c *cli) check(t *target) error {
	if !t.all && t.schema == "" {
		c.println("Error: Specify --all or --schema <name>")
		return errExit
	}
	if t.all {
		t.schema = ""
	}
	return nil
}

func (c *cli) listSchemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list-schemas",
		Short:   "List all tenant schemas",
		Args:    cobra.NoArgs,
		PreRunE: c.needDB,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			schemas, err := c.m.ListSchemas(ctx)
			if err != nil {
				return err
			}
			if len(schemas) == 0 {
				c.println("No tenant schemas found.")
				return nil
			}
			c.printf("Found %d tenant schema(s):\n\n", len(schemas))
			for _, s := range schemas {
				rev, err := c.m.Current(ctx, s)
				if err != nil {
					c.logger.Warn("Failed to read revision", zap.String("schema", s), zap.Error(err))
				}
				info := "(no migrations)"
				if rev != "" {
					info = fmt.Sprintf("(revision: %s)", rev)
				}
				c.printf("  • %s %s\n", s, info)
			}
			return nil
		},
	}
}

func (c *cli) currentCommand() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:     "current",
		Short:   "Show current revision for schema(s)",
		Args:    cobra.NoArgs,
		PreRunE: c.prepare(&t),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if t.schema != "" {
				c.printf("Current revision for schema '%s':\n\n", t.schema)
				c.showCurrent(ctx, t.schema)
				return nil
			}
			schemas, err := c.m.ListSchemas(ctx)
			if err != nil {
				return err
			}
			if len(schemas) == 0 {
				c.println("No tenant schemas found.")
				return nil
			}
			c.printf("Current revisions for %d schema(s):\n\n", len(schemas))
			for _, s := range schemas {
				c.showCurrent(ctx, s)
			}
			return nil
		},
	}
	addTargetFlags(cmd, &t, "Show current revision for")
	return cmd
}

func (c *cli) showCurrent(ctx context.Context, schema string) {
	rev, err := c.currentRevision(ctx, schema)
	switch {
	case err != nil:
		c.printf("  %s: Error - %v\n", schema, err)
	case rev == "":
		c.printf("  %s: No migrations applied (empty)\n", schema)
	default:
		c.printf("  %s: %s\n", schema, rev)
	}
}

func (c *cli) currentRevision(ctx context.Context, schema string) (string, error) {
	if _, err := c.m.EnsureVersionTable(ctx, schema); err != nil {
		return "", err
	}
	return c.m.Current(ctx, schema)
}

func (c *cli) historyCommand() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show migration history for schema(s)",
		Args:    cobra.NoArgs,
		PreRunE: c.prepare(&t),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if t.schema != "" {
				c.printf("Migration history for schema '%s':\n", t.schema)
				c.showHistory(ctx, t.schema)
				return nil
			}
			schemas, err := c.m.ListSchemas(ctx)
			if err != nil {
				return err
			}
			if len(schemas) == 0 {
				c.println("No tenant schemas found.")
				return nil
			}
			c.printf("Migration history for %d schema(s):\n", len(schemas))
			for _, s := range schemas {
				c.showHistory(ctx, s)
			}
			return nil
		},
	}
	addTargetFlags(cmd, &t, "Show history for")
	return cmd
}

func (c *cli) showHistory(ctx context.Context, schema string) {
	current, err := c.m.Current(ctx, schema)
	if err != nil {
		c.printf("  %s: Error - %v\n", schema, err)
		return
	}
	c.printf("\n%s:\n", schema)

	plan := c.m.Plan()
	revs := plan.Revisions()
	for i := len(revs) - 1; i >= 0; i-- {
		r := revs[i]
		parent := r.Parent
		if parent == "" {
			parent = "<base>"
		}
		var marks []string
		if r.ID == plan.Head() {
			marks = append(marks, "(head)")
		}
		if r.ID == current {
			marks = append(marks, "(current)")
		}
		line := parent + " -> " + r.ID
		if len(marks) > 0 {
			line += " " + strings.Join(marks, " ")
		}
		c.printf("%s, %s\n", line, r.Message)
	}
}

// action describes one of the marker-moving commands
type action struct {
	verb   string // upgrade
	gerund string // Upgrading
	past   string // upgraded
	prep   string // to
	op     func() migration.Operation
}

func (c *cli) upgradeCommand() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:     "upgrade [REVISION]",
		Short:   "Upgrade schema(s) to a newer version",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: c.prepare(&t),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := "head"
			if len(args) == 1 {
				rev = args[0]
			}
			return c.apply(cmd.Context(), &t, rev, action{
				verb: "upgrade", gerund: "Upgrading", past: "upgraded", prep: "to",
				op: func() migration.Operation { return c.m.Upgrade },
			})
		},
	}
	addTargetFlags(cmd, &t, "Upgrade")
	return cmd
}

func (c *cli) downgradeCommand() *cobra.Command {
	var t target
	var rev string
	cmd := &cobra.Command{
		Use:     "downgrade",
		Short:   "Downgrade schema(s)",
		Args:    cobra.NoArgs,
		PreRunE: c.prepare(&t),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.apply(cmd.Context(), &t, rev, action{
				verb: "downgrade", gerund: "Downgrading", past: "downgraded", prep: "to",
				op: func() migration.Operation { return c.m.Downgrade },
			})
		},
	}
	addTargetFlags(cmd, &t, "Downgrade")
	cmd.Flags().StringVar(&rev, "revision", "-1", "revision to downgrade to")
	return cmd
}

func (c *cli) stampCommand() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:     "stamp REVISION",
		Short:   "Stamp schema(s) with a revision without running migrations",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.prepare(&t),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.apply(cmd.Context(), &t, args[0], action{
				verb: "stamp", gerund: "Stamping", past: "stamped", prep: "with",
				op: func() migration.Operation { return c.m.Stamp },
			})
		},
	}
	addTargetFlags(cmd, &t, "Stamp")
	return cmd
}

func (c *cli) apply(ctx context.Context, t *target, rev string, a action) error {
	op := a.op()

	if t.schema != "" {
		c.printf("%s schema '%s' %s revision '%s'...\n\n", a.gerund, t.schema, a.prep, rev)
		if _, err := op(ctx, t.schema, rev); err != nil {
			c.printf("\n✗ Schema '%s' failed to %s: %v\n", t.schema, a.verb, err)
			return errExit
		}
		c.printf("\n✓ Schema '%s' %s successfully!\n", t.schema, a.past)
		return nil
	}

	schemas, err := c.m.ListSchemas(ctx)
	if err != nil {
		return err
	}
	if len(schemas) == 0 {
		c.println("No tenant schemas found.")
		return nil
	}

	c.printf("%s %d schema(s) %s revision '%s'...\n\n", a.gerund, len(schemas), a.prep, rev)
	orch := migration.NewOrchestrator(c.m, c.logger)
	results, err := orch.Run(ctx, schemas, op, rev, migration.Hooks{
		Before: func(schema string) { c.printf("%s schema '%s'...\n", a.gerund, schema) },
		After:  func(migration.Result) { c.println() },
	})

	rule := strings.Repeat("=", 60)
	c.println(rule)
	c.println(strings.ToUpper(a.verb) + " SUMMARY")
	c.println(rule)
	for _, res := range results {
		if res.Err != nil {
			c.printf("✗ %s: Failed: %v\n", res.Schema, res.Err)
		} else {
			c.printf("✓ %s: Success\n", res.Schema)
		}
	}

	if failed := migration.Failures(err); len(failed) > 0 {
		c.printf("\n%d schema(s) failed to %s.\n", len(failed), a.verb)
		return errExit
	}
	c.printf("\nAll %d schema(s) %s successfully!\n", len(schemas), a.past)
	return nil
}

func (c *cli) revisionCommand() *cobra.Command {
	var message, dir string
	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Create a new empty revision",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rf, err := migration.CreateRevision(dir, message)
			if err != nil {
				return err
			}
			c.printf("Generated revision %s (revises %s)\n", rf.ID, orBase(rf.Parent))
			c.printf("  %s\n  %s\n", rf.UpPath, rf.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "revision message")
	cmd.Flags().StringVar(&dir, "dir", defaultRevisionDir, "directory holding the revision files")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func orBase(rev string) string {
	if rev == "" {
		return "<base>"
	}
	return rev
}
