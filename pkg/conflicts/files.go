package conflicts

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/manifest"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// ConflictSuffix is inserted before the mod id in renamed files
const ConflictSuffix = ".conflict-"

var severityByExtension = map[string]types.Severity{
	".dll":    types.SeverityCritical,
	".exe":    types.SeverityCritical,
	".so":     types.SeverityCritical,
	".dylib":  types.SeverityCritical,
	".json":   types.SeverityWarning,
	".xml":    types.SeverityWarning,
	".config": types.SeverityWarning,
	".cfg":    types.SeverityWarning,
	".toml":   types.SeverityWarning,
	".yaml":   types.SeverityWarning,
	".yml":    types.SeverityWarning,
}

// FileSeverity grades an overlapping file by its extension
func FileSeverity(rel string) types.Severity {
	if s, ok := severityByExtension[strings.ToLower(path.Ext(rel))]; ok {
		return s
	}
	return types.SeverityInfo
}

// ConflictTarget is where a losing provider's copy of rel is renamed to
func ConflictTarget(rel, modID string) string {
	return rel + ConflictSuffix + modID
}

func (d *Detector) filePass(mods []types.ModDescriptor, index FileIndex) []types.Conflict {
	providers := map[string][]string{}
	var order []string

	for _, m := range mods {
		files := lookupFiles(index, m.ID)
		sort.Strings(files)
		for _, rel := range files {
			rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
			if manifest.IsMetadataFile(rel) || d.ignored(rel) {
				continue
			}
			key := strings.ToLower(rel)
			if _, seen := providers[key]; !seen {
				order = append(order, rel)
			}
			if !containsFold(providers[key], m.ID) {
				providers[key] = append(providers[key], m.ID)
			}
		}
	}

	var conflicts []types.Conflict
	for _, rel := range order {
		owners := providers[strings.ToLower(rel)]
		if len(owners) < 2 {
			continue
		}

		severity := FileSeverity(rel)
		keeper := owners[len(owners)-1]
		actions := make([]types.ResolutionAction, 0, len(owners)-1)
		for _, owner := range owners[:len(owners)-1] {
			actions = append(actions, types.ResolutionAction{
				Type:        types.ActionRename,
				ModID:       owner,
				Path:        rel,
				Target:      ConflictTarget(rel, owner),
				Description: fmt.Sprintf("rename %s from %s so %s's copy is used", rel, owner, keeper),
			})
		}

		conflicts = append(conflicts, types.Conflict{
			ID:       fmt.Sprintf("%s:%s", types.ConflictFileOverlap, rel),
			Kind:     types.ConflictFileOverlap,
			Severity: severity,
			Mods:     owners,
			Paths:    []string{rel},
			Message:  fmt.Sprintf("%s is provided by %s", rel, strings.Join(owners, ", ")),
			Resolution: &types.Resolution{
				Strategy:       "keep_last",
				CanAutoResolve: severity != types.SeverityCritical,
				Actions:        actions,
			},
		})
	}
	return conflicts
}

// ignored matches rel against the configured glob patterns, by full path
// and by base name
func (d *Detector) ignored(rel string) bool {
	for _, pattern := range d.settings.Ignore {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func lookupFiles(index FileIndex, id string) []string {
	if files, ok := index[id]; ok {
		return append([]string(nil), files...)
	}
	for k, files := range index {
		if strings.EqualFold(k, id) {
			return append([]string(nil), files...)
		}
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
