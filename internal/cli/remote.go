package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/arthur-debert/silkmod/pkg/arch"
	"github.com/arthur-debert/silkmod/pkg/output"
	"github.com/arthur-debert/silkmod/pkg/remote"
	"github.com/spf13/cobra"
)

func newUpdatesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "updates",
		Short:   MsgUpdatesShort,
		GroupID: groupRemote,
		Args:    cobra.NoArgs,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			mods, err := a.ledger.List()
			if err != nil {
				return err
			}
			ts := remote.NewThunderstore(a.cfg.Remote, a.client)
			updates, err := remote.CheckUpdates(cmd.Context(), ts, mods)
			if err != nil {
				return err
			}
			if updates == nil {
				updates = []remote.Update{}
			}

			rep := &output.Report{Title: "Updates", Data: updates}
			if len(updates) == 0 {
				rep.Add("Success", MsgNoUpdates)
				return a.out.RenderReport(rep)
			}
			rep.Table = &output.Table{Headers: []string{"MOD", "INSTALLED", "LATEST"}}
			for _, u := range updates {
				rep.Table.Rows = append(rep.Table.Rows, []string{u.ModID, u.Installed, u.Latest})
			}
			return a.out.RenderReport(rep)
		}),
	}
}

// loaderResult is what the loader command reports
type loaderResult struct {
	Release      string            `json:"release"`
	Architecture arch.Architecture `json:"architecture"`
	Asset        remote.Asset      `json:"asset"`
	Path         string            `json:"path,omitempty"`
}

func newLoaderCmd(flags *globalFlags) *cobra.Command {
	var downloadDir string

	cmd := &cobra.Command{
		Use:     "loader",
		Short:   MsgLoaderShort,
		GroupID: groupRemote,
		Args:    cobra.NoArgs,
		RunE: runner(flags, func(cmd *cobra.Command, a *app, args []string) error {
			gh := remote.NewGitHub(a.cfg.Remote, a.client)
			release, err := gh.LatestRelease(cmd.Context(), a.cfg.Loader.GitHubOwner, a.cfg.Loader.GitHubRepo)
			if err != nil {
				return err
			}

			detected := arch.Detect(a.paths.GameExecutable(""))
			asset, err := remote.SelectLoaderAsset(release.Assets, runtime.GOOS, detected)
			if err != nil {
				return err
			}

			result := loaderResult{Release: release.TagName, Architecture: detected, Asset: asset}
			rep := &output.Report{Title: fmt.Sprintf("%s %s", a.cfg.Loader.Name, release.TagName), Data: &result}
			rep.Add("Info", fmt.Sprintf("%s (%s)", asset.Name, detected))

			if downloadDir != "" {
				result.Path = filepath.Join(downloadDir, asset.Name)
				if a.flags.dryRun {
					rep.Add("Warning", MsgDryRunNotice)
				} else {
					if err := remote.Download(cmd.Context(), a.client, asset.DownloadURL, result.Path); err != nil {
						return err
					}
					rep.Add("Success", fmt.Sprintf(MsgDownloaded, result.Path))
				}
			}
			return a.out.RenderReport(rep)
		}),
	}

	cmd.Flags().StringVar(&downloadDir, "download", "", MsgFlagDownload)
	return cmd
}
