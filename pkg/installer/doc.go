// Package installer changes what is installed in the game's plugins folder.
//
// Every mutation goes through the Installer: installing a mod archive,
// uninstalling, enabling and disabling mods, carrying out conflict
// resolution actions and snapshotting mod folders into the backups
// directory. The ledger is updated alongside each change, and the
// compatibility cache, when one is attached, is purged.
//
// In dry-run mode the Installer performs every check and logs what it
// would do without touching the filesystem or the ledger.
package installer
