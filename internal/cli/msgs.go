package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "A mod manager for Hollow Knight: Silksong"
	MsgVersionShort    = "Print version information"
	MsgListShort       = "List installed mods"
	MsgInstallShort    = "Install a mod from a zip or from Thunderstore"
	MsgUninstallShort  = "Remove an installed mod"
	MsgEnableShort     = "Enable a disabled mod"
	MsgDisableShort    = "Disable a mod without removing it"
	MsgResolveShort    = "Resolve a mod's dependencies"
	MsgConflictsShort  = "Find conflicts between installed mods"
	MsgCheckShort      = "Check installed mods for compatibility"
	MsgArchShort       = "Detect the architecture of a game binary"
	MsgUpdatesShort    = "List mods with newer versions on Thunderstore"
	MsgLoaderShort     = "Show the BepInEx release for this game"
	MsgBackupShort     = "Back up mod folders"
	MsgTopicsShort     = "Display available documentation topics"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice   = "DRY RUN MODE - No changes were made"
	MsgNoMods         = "No mods installed."
	MsgNoConflicts    = "No conflicts found."
	MsgNoUpdates      = "All mods are up to date."
	MsgInstalled      = "Installed %s %s"
	MsgReplaced       = "Replaced %s %s (backup in %s)"
	MsgUninstalled    = "Uninstalled %s"
	MsgEnabled        = "Enabled %s"
	MsgDisabled       = "Disabled %s"
	MsgBackupWritten  = "Backed up %d mod(s), %d file(s) to %s"
	MsgResolved       = "Resolved %d conflict(s)"
	MsgSkippedConfirm = "Skipped %s: needs --yes"
	MsgDownloaded     = "Downloaded %s"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagForce     = "Install or remove despite failed checks"
	MsgFlagGameDir   = "Game installation directory"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagConfig    = "Config file (default $XDG_CONFIG_HOME/silkmod/config.toml)"
	MsgFlagCandidate = "Check a mod zip against the installed mods"
	MsgFlagFix       = "Apply the proposed resolutions"
	MsgFlagYes       = "Apply resolutions that need confirmation too"
	MsgFlagDownload  = "Download the selected asset into this directory"

	MsgInstallExample = `  # Install a downloaded package
  silkmod install ~/Downloads/Team-Architect-1.2.0.zip

  # Install the latest version from Thunderstore
  silkmod install Architect

  # See what would happen first
  silkmod install --dry-run Architect`

	MsgConflictsExample = `  # Conflicts among installed mods
  silkmod conflicts

  # Would this zip conflict with what is installed?
  silkmod conflicts --candidate Team-Architect-1.2.0.zip

  # Apply the safe resolutions
  silkmod conflicts --fix`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(silkmod completion bash)

Zsh:
  $ silkmod completion zsh > "${fpath[1]}/_silkmod"

Fish:
  $ silkmod completion fish | source

PowerShell:
  PS> silkmod completion powershell | Out-String | Invoke-Expression`
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
