package cli

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/silkmod/pkg/cobrax/topics"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicsFS embed.FS

// Command groups shown in help
const (
	groupMods     = "mods"
	groupAnalysis = "analysis"
	groupRemote   = "remote"
)

// NewRootCmd builds the silkmod command tree
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:   "silkmod",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.BoolVarP(&flags.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	pf.BoolVar(&flags.force, "force", false, MsgFlagForce)
	pf.StringVarP(&flags.gameDir, "game-dir", "g", "", MsgFlagGameDir)
	pf.StringVarP(&flags.format, "format", "f", "", MsgFlagFormat)
	pf.StringVar(&flags.configPath, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(
		&cobra.Group{ID: groupMods, Title: "Mod Commands:"},
		&cobra.Group{ID: groupAnalysis, Title: "Analysis Commands:"},
		&cobra.Group{ID: groupRemote, Title: "Remote Commands:"},
	)

	rootCmd.AddCommand(
		newListCmd(flags),
		newInstallCmd(flags),
		newUninstallCmd(flags),
		newEnableCmd(flags),
		newDisableCmd(flags),
		newBackupCmd(flags),
		newResolveCmd(flags),
		newConflictsCmd(flags),
		newCheckCmd(flags),
		newArchCmd(flags),
		newUpdatesCmd(flags),
		newLoaderCmd(flags),
		newVersionCmd(),
		newCompletionCmd(),
	)

	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		manager, err := topics.Install(rootCmd, sub, topics.Options{
			Renderer: topics.GlamourRenderer{Width: 80},
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load help topics")
		} else {
			rootCmd.AddCommand(newTopicsCmd(manager))
		}
	}

	return rootCmd
}

// Execute runs the command tree and renders any error. It returns the
// process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	renderError(rootCmd, err)
	return 1
}

func renderError(rootCmd *cobra.Command, err error) {
	format, _ := rootCmd.PersistentFlags().GetString("format")
	f, ferr := output.ParseFormat(format)
	if ferr != nil {
		f = output.FormatText
	}
	r, rerr := output.NewRenderer(f, rootCmd.ErrOrStderr())
	if rerr == nil && r.RenderError(err) == nil {
		return
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
}

// runner adapts a command body to cobra, building the app first
func runner(flags *globalFlags, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, flags)
		if err != nil {
			return err
		}
		return fn(cmd, a, args)
	}
}
