package conflicts

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// dependencyPass resolves every unordered pair against each other
func (d *Detector) dependencyPass(mods []types.ModDescriptor) []types.Conflict {
	var conflicts []types.Conflict

	for i := 0; i < len(mods); i++ {
		for j := i + 1; j < len(mods); j++ {
			a, b := mods[i], mods[j]
			if a.MatchesID(b.ID) {
				continue
			}

			outA := d.resolver.Resolve(a, []types.ModDescriptor{b})
			outB := d.resolver.Resolve(b, []types.ModDescriptor{a})

			var found []types.Conflict
			for _, c := range outA.Conflicts {
				if c.Involves(b.ID) {
					found = append(found, c)
				}
			}
			for _, c := range outB.Conflicts {
				if c.Involves(a.ID) && !hasKind(found, types.ConflictCircularDependency, c.Kind) {
					found = append(found, c)
				}
			}
			if len(found) == 0 {
				continue
			}

			severity := types.SeverityWarning
			messages := make([]string, 0, len(found))
			for _, c := range found {
				if c.Severity.Rank() > severity.Rank() {
					severity = c.Severity
				}
				messages = append(messages, c.Message)
			}

			conflicts = append(conflicts, types.Conflict{
				ID:       fmt.Sprintf("%s:%s:%s", types.ConflictDependency, a.ID, b.ID),
				Kind:     types.ConflictDependency,
				Severity: severity,
				Mods:     []string{a.ID, b.ID},
				Message:  strings.Join(messages, "; "),
			})
		}
	}
	return conflicts
}

// hasKind avoids reporting a two-party cycle once from each side
func hasKind(conflicts []types.Conflict, kind, candidate types.ConflictKind) bool {
	if candidate != kind {
		return false
	}
	for _, c := range conflicts {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// versionPass groups mods by id and flags ids present at several versions
func (d *Detector) versionPass(mods []types.ModDescriptor) []types.Conflict {
	groups := map[string][]types.ModDescriptor{}
	var order []string
	for _, m := range mods {
		key := strings.ToLower(m.ID)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	var conflicts []types.Conflict
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		parsed := make([]version.Version, len(group))
		distinct := map[string]bool{}
		for i, m := range group {
			parsed[i] = version.Parse(m.Version)
			distinct[parsed[i].String()] = true
		}
		if len(distinct) < 2 {
			continue
		}

		highest := version.Max(parsed...)
		kept := -1
		var actions []types.ResolutionAction
		var listed []string
		for i, m := range group {
			listed = append(listed, parsed[i].String())
			if kept < 0 && version.Compare(parsed[i], highest) == 0 {
				kept = i
				continue
			}
			if m.InstallPath == "" {
				// the candidate is not on disk yet; nothing to disable
				continue
			}
			actions = append(actions, types.ResolutionAction{
				Type:        types.ActionDisable,
				ModID:       m.ID,
				Path:        m.InstallPath,
				Description: fmt.Sprintf("disable %s %s", m.ID, parsed[i]),
			})
		}

		id := group[kept].ID
		conflicts = append(conflicts, types.Conflict{
			ID:       fmt.Sprintf("%s:%s", types.ConflictVersionDuplicate, id),
			Kind:     types.ConflictVersionDuplicate,
			Severity: types.SeverityWarning,
			Mods:     []string{id},
			Message:  fmt.Sprintf("%s is present at versions %s; keeping %s", id, strings.Join(listed, ", "), highest),
			Resolution: &types.Resolution{
				Strategy:       "keep_highest",
				CanAutoResolve: len(actions) > 0,
				Actions:        actions,
			},
		})
	}
	return conflicts
}
