package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/installer"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/output"
	"github.com/arthur-debert/silkmod/pkg/remote"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/spf13/cobra"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		GroupID: groupMods,
		Args:    cobra.NoArgs,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			mods, err := a.ledger.List()
			if err != nil {
				return err
			}
			if mods == nil {
				mods = []types.ModDescriptor{}
			}

			rep := &output.Report{Title: "Installed mods", Data: mods}
			if len(mods) == 0 {
				rep.Add("Muted", MsgNoMods)
				return a.out.RenderReport(rep)
			}
			rep.Table = &output.Table{Headers: []string{"ID", "NAME", "VERSION", "STATUS"}}
			for _, m := range mods {
				status := "enabled"
				if !m.Enabled {
					status = "disabled"
				}
				rep.Table.Rows = append(rep.Table.Rows, []string{m.ID, m.DisplayName(), m.Version, status})
			}
			return a.out.RenderReport(rep)
		}),
	}
}

func newInstallCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "install <zip|package>",
		Short:   MsgInstallShort,
		Example: MsgInstallExample,
		GroupID: groupMods,
		Args:    cobra.ExactArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			archivePath, err := a.fetchPackage(cmd, args[0])
			if err != nil {
				return err
			}

			result, err := a.installer.Install(cmd.Context(), archivePath, a.options())
			if err != nil {
				return err
			}
			return a.out.RenderReport(installReport(result))
		}),
	}
}

// fetchPackage returns arg when it names a zip file, and otherwise
// downloads the latest version of the Thunderstore package arg into the
// cache directory
func (a *app) fetchPackage(cmd *cobra.Command, arg string) (string, error) {
	if strings.EqualFold(filepath.Ext(arg), ".zip") {
		return arg, nil
	}
	logger := logging.GetLogger("cli.install")

	ts := remote.NewThunderstore(a.cfg.Remote, a.client)
	latest, err := ts.LatestVersion(cmd.Context(), arg)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(a.paths.CacheDir(), "downloads", latest.FullName+".zip")
	logger.Info().Str("package", latest.FullName).Str("url", latest.DownloadURL).Msg("Downloading package")
	if err := remote.Download(cmd.Context(), a.client, latest.DownloadURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func installReport(result installer.InstallResult) *output.Report {
	rep := &output.Report{
		Title: fmt.Sprintf("%s %s", result.Mod.DisplayName(), result.Mod.Version),
		Data:  result,
	}
	if len(result.Conflicts) > 0 {
		rep.Table = conflictTable(result.Conflicts)
	}
	switch {
	case result.DryRun:
		rep.Add("Warning", MsgDryRunNotice)
	case result.Replaced != nil && result.Backup != nil:
		rep.Add("Success", fmt.Sprintf(MsgReplaced, result.Mod.ID, result.Replaced.Version, result.Backup.Dir))
	default:
		rep.Add("Success", fmt.Sprintf(MsgInstalled, result.Mod.ID, result.Mod.Version))
	}
	return rep
}

func newUninstallCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <id>",
		Aliases: []string{"rm"},
		Short:   MsgUninstallShort,
		GroupID: groupMods,
		Args:    cobra.ExactArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.installer.Uninstall(cmd.Context(), args[0], a.options()); err != nil {
				return err
			}
			return a.message(fmt.Sprintf(MsgUninstalled, args[0]))
		}),
	}
}

func newEnableCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "enable <id>",
		Short:   MsgEnableShort,
		GroupID: groupMods,
		Args:    cobra.ExactArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.installer.Enable(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.message(fmt.Sprintf(MsgEnabled, args[0]))
		}),
	}
}

func newDisableCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "disable <id>",
		Short:   MsgDisableShort,
		GroupID: groupMods,
		Args:    cobra.ExactArgs(1),
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.installer.Disable(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.message(fmt.Sprintf(MsgDisabled, args[0]))
		}),
	}
}

func newBackupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "backup [ids...]",
		Short:   MsgBackupShort,
		GroupID: groupMods,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			snap, err := a.installer.Backup(cmd.Context(), args)
			if err != nil {
				return err
			}
			rep := &output.Report{Title: "Backup " + snap.ID, Data: snap}
			if snap.DryRun {
				rep.Add("Warning", MsgDryRunNotice)
			}
			rep.Add("Success", fmt.Sprintf(MsgBackupWritten, len(snap.Mods), len(snap.Files), snap.Dir))
			return a.out.RenderReport(rep)
		}),
	}
}

// message renders a one-line result, flagged when nothing was changed
func (a *app) message(msg string) error {
	if a.flags.dryRun {
		if err := a.out.RenderMessage("Warning", MsgDryRunNotice); err != nil {
			return err
		}
	}
	return a.out.RenderMessage("Success", msg)
}
