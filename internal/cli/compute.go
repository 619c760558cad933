package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/languages"
	"github.com/serialver-dev/serialver/internal/output"
	"github.com/serialver-dev/serialver/internal/parser"
	"github.com/serialver-dev/serialver/internal/resolve"
	"github.com/serialver-dev/serialver/internal/suid"
)

func (a *App) RunCompute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	format, err := a.ParseOutputFormat()
	if err != nil {
		return err
	}
	target, err := a.ParseTarget()
	if err != nil {
		return err
	}
	className, err := OptionalStringFlag(cmd, "class")
	if err != nil {
		return err
	}
	declare, err := OptionalBoolFlag(cmd, "declare")
	if err != nil {
		return err
	}
	explain, err := OptionalBoolFlag(cmd, "explain")
	if err != nil {
		return err
	}
	sourcePaths, err := cmd.Flags().GetStringArray("source-path")
	if err != nil {
		return fmt.Errorf("failed to read --source-path flag: %w", err)
	}

	registry := languages.NewDefaultRegistry()
	units := make([]*javaast.CompilationUnit, 0, len(args))
	defer func() {
		for _, unit := range units {
			unit.Close()
		}
	}()

	issues := make([]parser.ParseIssue, 0)
	for _, path := range args {
		unit, err := registry.ParseFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if unit == nil {
			return fmt.Errorf("unsupported file type %q (supported: %v)", path, registry.SupportedExtensions())
		}
		unit.Path = filepath.ToSlash(path)
		units = append(units, unit)
		if unit.HasError {
			issues = append(issues, parser.ParseIssue{
				File:     unit.Path,
				Language: "java",
				Severity: "warning",
				Message:  "syntax errors present, declarations may be incomplete",
			})
		}
	}

	scope := append([]*javaast.CompilationUnit{}, units...)
	for _, dir := range sourcePaths {
		ignoreRules, err := a.ignoreRules(dir)
		if err != nil {
			return err
		}
		result, err := registry.ParseDirectory(ctx, dir, ignoreRules, a.parallelism())
		if err != nil {
			return fmt.Errorf("failed to parse source path %s: %w", dir, err)
		}
		defer result.Close()
		issues = append(issues, result.Issues...)
		scope = append(scope, result.Units...)
	}
	ReportParseIssues(stderr, a.logger, issues)

	engine := suid.New(resolve.NewIndex(scope...), suid.Options{Target: target}, a.logger)

	ids := make([]output.Identifier, 0)
	for _, unit := range units {
		classes := unit.AllClasses()
		if className != "" {
			classes = nil
			if c := unit.FindClass(className); c != nil {
				classes = append(classes, c)
			}
		}

		dialect, hasDialect := suid.DialectForExtension(filepath.Ext(unit.Path))
		for _, c := range classes {
			value, err := engine.ComputeIdentifier(c)
			if err != nil {
				return err
			}
			id := output.Identifier{
				File:         unit.Path,
				Class:        c.Binary,
				Value:        value,
				Serializable: engine.IsSerializable(c),
			}
			if declare && hasDialect && engine.NeedsIdentifier(c) {
				id.Declaration, _ = suid.RenderDeclaration(dialect, value)
			}
			if explain {
				id.Descriptor = engine.Describe(c)
			}
			ids = append(ids, id)
		}
	}
	if className != "" && len(ids) == 0 {
		return fmt.Errorf("class %q not found in %v", className, args)
	}

	return output.WriteIdentifiers(cmd.OutOrStdout(), format, ids)
}
