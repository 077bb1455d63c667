package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/arch"
	"github.com/arthur-debert/silkmod/pkg/conflicts"
	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/installer"
	"github.com/arthur-debert/silkmod/pkg/manifest"
	"github.com/arthur-debert/silkmod/pkg/output"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/spf13/cobra"
)

func newResolveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <id|zip>",
		Short:   MsgResolveShort,
		GroupID: groupAnalysis,
		Args:    cobra.ExactArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			var mod types.ModDescriptor
			if strings.EqualFold(filepath.Ext(args[0]), ".zip") {
				desc, _, err := manifest.ReadArchive(args[0])
				if err != nil {
					return err
				}
				mod = desc
			} else {
				desc, err := a.ledger.Get(args[0])
				if err != nil {
					return err
				}
				mod = desc
			}

			others, err := a.enabledMods(mod.ID)
			if err != nil {
				return err
			}
			outcome := a.resolver.Resolve(mod, others)
			return a.out.RenderReport(resolveReport(mod, outcome))
		}),
	}
}

func resolveReport(mod types.ModDescriptor, outcome types.ResolutionOutcome) *output.Report {
	rep := &output.Report{
		Title: fmt.Sprintf("Dependencies of %s %s", mod.DisplayName(), mod.Version),
		Data:  outcome,
	}
	rows := make([][]string, 0, len(outcome.Resolved)+len(outcome.Missing))
	for _, dc := range outcome.Resolved {
		rows = append(rows, []string{dc.ModID, dc.ConstraintString(), "resolved"})
	}
	for _, dc := range outcome.Missing {
		rows = append(rows, []string{dc.ModID, dc.ConstraintString(), "missing"})
	}
	if len(rows) > 0 {
		rep.Table = &output.Table{Headers: []string{"DEPENDENCY", "CONSTRAINT", "STATUS"}, Rows: rows}
	}
	if outcome.LoaderRequirement != "" {
		rep.Add("Info", "Requires loader "+outcome.LoaderRequirement)
	}
	for _, c := range outcome.Conflicts {
		rep.Add(output.SeverityStyle(c.Severity), c.Message)
	}
	if outcome.IsValid {
		rep.Add("Success", "All dependencies satisfied")
	} else {
		rep.Add("Critical", "Dependencies not satisfied")
	}
	return rep
}

// conflictsResult is what the conflicts command reports
type conflictsResult struct {
	Conflicts []types.Conflict `json:"conflicts"`
	Resolved  []string         `json:"resolved,omitempty"`
	Skipped   []string         `json:"skipped,omitempty"`
}

func newConflictsCmd(flags *globalFlags) *cobra.Command {
	var candidate string
	var fix, yes bool

	cmd := &cobra.Command{
		Use:     "conflicts",
		Short:   MsgConflictsShort,
		Example: MsgConflictsExample,
		GroupID: groupAnalysis,
		Args:    cobra.NoArgs,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			if candidate != "" && fix {
				return errors.New(errors.ErrInvalidInput, "--fix cannot be combined with --candidate")
			}

			var found []types.Conflict
			if candidate != "" {
				preview, err := a.installer.Install(cmd.Context(), candidate, installer.Options{DryRun: true, Force: true})
				if err != nil {
					return err
				}
				found = conflicts.Involving(preview.Conflicts, preview.Mod.ID)
			} else {
				mods, err := a.enabledMods("")
				if err != nil {
					return err
				}
				found = a.detector.Detect(mods, nil)
			}

			result := conflictsResult{Conflicts: found}
			if result.Conflicts == nil {
				result.Conflicts = []types.Conflict{}
			}
			if fix {
				for _, c := range found {
					if c.Resolution == nil || len(c.Resolution.Actions) == 0 {
						continue
					}
					err := conflicts.ResolveConflict(cmd.Context(), c, a.installer, yes)
					if errors.IsErrorCode(err, errors.ErrNeedsConfirmation) {
						result.Skipped = append(result.Skipped, c.ID)
						continue
					}
					if err != nil {
						return err
					}
					result.Resolved = append(result.Resolved, c.ID)
				}
			}
			return a.out.RenderReport(conflictsReport(result, a.flags.dryRun))
		}),
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", MsgFlagCandidate)
	cmd.Flags().BoolVar(&fix, "fix", false, MsgFlagFix)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	return cmd
}

func conflictsReport(result conflictsResult, dryRun bool) *output.Report {
	rep := &output.Report{Title: "Conflicts", Data: result}
	if len(result.Conflicts) == 0 {
		rep.Add("Success", MsgNoConflicts)
		return rep
	}
	rep.Table = conflictTable(result.Conflicts)
	rep.Add(output.SeverityStyle(conflicts.HighestSeverity(result.Conflicts)),
		fmt.Sprintf("%d conflict(s), highest severity %s", len(result.Conflicts), conflicts.HighestSeverity(result.Conflicts)))
	if dryRun && len(result.Resolved) > 0 {
		rep.Add("Warning", MsgDryRunNotice)
	}
	if len(result.Resolved) > 0 {
		rep.Add("Success", fmt.Sprintf(MsgResolved, len(result.Resolved)))
	}
	for _, id := range result.Skipped {
		rep.Add("Warning", fmt.Sprintf(MsgSkippedConfirm, id))
	}
	return rep
}

func conflictTable(found []types.Conflict) *output.Table {
	t := &output.Table{Headers: []string{"SEVERITY", "KIND", "MODS", "MESSAGE"}}
	for _, c := range found {
		t.Rows = append(t.Rows, []string{string(c.Severity), string(c.Kind), strings.Join(c.Mods, ", "), c.Message})
	}
	return t
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "check [ids...]",
		Short:   MsgCheckShort,
		GroupID: groupAnalysis,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ids := args
			if len(ids) == 0 {
				mods, err := a.ledger.List()
				if err != nil {
					return err
				}
				for _, m := range mods {
					ids = append(ids, m.ID)
				}
			}

			results := a.checker.CheckBatch(cmd.Context(), ids)
			if results == nil {
				results = []types.CompatibilityResult{}
			}
			rep := &output.Report{Title: "Compatibility", Data: results}
			if len(results) == 0 {
				rep.Add("Muted", MsgNoMods)
				return a.out.RenderReport(rep)
			}
			rep.Table = &output.Table{Headers: []string{"MOD", "STATUS", "REASONS"}}
			incompatible := 0
			for _, r := range results {
				if r.Status == types.CompatibilityIncompatible {
					incompatible++
				}
				rep.Table.Rows = append(rep.Table.Rows, []string{r.ModID, string(r.Status), strings.Join(r.Reasons, "; ")})
			}
			if incompatible > 0 {
				rep.Add(output.StatusStyle(types.CompatibilityIncompatible), fmt.Sprintf("%d incompatible mod(s)", incompatible))
			}
			return a.out.RenderReport(rep)
		}),
	}
}

// archResult is what the arch command reports
type archResult struct {
	Path         string            `json:"path"`
	Architecture arch.Architecture `json:"architecture"`
}

func newArchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "arch [path]",
		Short:   MsgArchShort,
		GroupID: groupAnalysis,
		Args:    cobra.MaximumNArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			target := a.paths.GameExecutable("")
			if len(args) == 1 {
				target = args[0]
			}
			result := archResult{Path: target, Architecture: arch.Detect(target)}
			rep := &output.Report{Data: result}
			rep.Add("Info", fmt.Sprintf("%s: %s", result.Path, result.Architecture))
			return a.out.RenderReport(rep)
		}),
	}
}
