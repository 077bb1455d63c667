package conflicts

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// loadOrderPass reads the loader config so its presence shows up in the
// logs. The loader decides plugin order from declared dependencies, so
// there is nothing to compare it against and no conflict is produced.
func (d *Detector) loadOrderPass(mods []types.ModDescriptor) []types.Conflict {
	if d.loaderConfigPath == "" {
		return nil
	}
	data, err := d.fs.ReadFile(d.loaderConfigPath)
	if err != nil {
		d.logger.Debug().Str("path", d.loaderConfigPath).Msg("No loader config found")
		return nil
	}
	d.logger.Debug().
		Str("path", d.loaderConfigPath).
		Int("bytes", len(data)).
		Int("mods", len(mods)).
		Msg("Read loader config; load order is managed by the loader")
	return nil
}

// configPass attributes loader config files to mods and flags files
// claimed by more than one
func (d *Detector) configPass(mods []types.ModDescriptor) []types.Conflict {
	if d.loaderConfigDir == "" || len(d.settings.AttributionKeys) == 0 {
		return nil
	}

	files, err := filesystem.ListFiles(d.fs, d.loaderConfigDir)
	if err != nil {
		d.logger.Warn().Err(err).Str("dir", d.loaderConfigDir).Msg("Cannot scan loader config directory")
		return nil
	}

	var conflicts []types.Conflict
	for _, rel := range files {
		ext := strings.ToLower(path.Ext(rel))
		if !d.settings.HasConfigExtension(ext) {
			continue
		}
		data, err := d.fs.ReadFile(filepath.Join(d.loaderConfigDir, filepath.FromSlash(rel)))
		if err != nil {
			d.logger.Debug().Err(err).Str("file", rel).Msg("Skipping unreadable config file")
			continue
		}

		values, err := AttributionValues(ext, data, d.settings.AttributionKeys)
		if err != nil {
			d.logger.Debug().Err(err).Str("file", rel).Msg("Skipping unparsable config file")
			continue
		}

		owners := knownOwners(values, mods)
		if len(owners) < 2 {
			continue
		}

		actions := make([]types.ResolutionAction, 0, len(owners)-1)
		for _, owner := range owners[1:] {
			actions = append(actions, types.ResolutionAction{
				Type:        types.ActionMerge,
				ModID:       owner,
				Path:        rel,
				Description: fmt.Sprintf("merge %s's settings in %s by hand", owner, rel),
			})
		}

		conflicts = append(conflicts, types.Conflict{
			ID:       fmt.Sprintf("%s:%s", types.ConflictConfigOverlap, rel),
			Kind:     types.ConflictConfigOverlap,
			Severity: types.SeverityWarning,
			Mods:     owners,
			Paths:    []string{rel},
			Message:  fmt.Sprintf("config %s is shared by %s", rel, strings.Join(owners, ", ")),
			Resolution: &types.Resolution{
				Strategy:       "merge",
				CanAutoResolve: false,
				Actions:        actions,
			},
		})
	}
	return conflicts
}

// knownOwners maps attribution values onto installed mod ids, keeping
// registration order
func knownOwners(values []string, mods []types.ModDescriptor) []string {
	var owners []string
	for _, m := range mods {
		if containsFold(owners, m.ID) {
			continue
		}
		if containsFold(values, m.ID) {
			owners = append(owners, m.ID)
		}
	}
	return owners
}

// AttributionValues extracts the values of keys from a config file.
// Key names match case-insensitively. The format is picked from ext.
func AttributionValues(ext string, data []byte, keys []string) ([]string, error) {
	c := &collector{keys: keys}

	switch strings.ToLower(ext) {
	case ".xml":
		if err := c.xml(data); err != nil {
			return nil, err
		}
	case ".config":
		if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
			c.lines(data)
			break
		}
		if err := c.xml(data); err != nil {
			return nil, err
		}
	case ".toml":
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		c.walk(doc)
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		c.walk(doc)
	case ".json":
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		c.walk(doc)
	default:
		c.lines(data)
	}
	return c.values, nil
}

type collector struct {
	keys   []string
	values []string
}

func (c *collector) isKey(k string) bool {
	return containsFold(c.keys, strings.TrimSpace(k))
}

func (c *collector) add(v string) {
	v = strings.Trim(strings.TrimSpace(v), `"'`)
	if v != "" && !containsFold(c.values, v) {
		c.values = append(c.values, v)
	}
}

// lines handles Key=Value and Key: Value files (cfg, ini, txt)
func (c *collector) lines(data []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx <= 0 {
			continue
		}
		if c.isKey(line[:idx]) {
			c.add(line[idx+1:])
		}
	}
}

// xml looks at element names, attribute names and <add key="" value=""/> pairs
func (c *collector) xml(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	for _, el := range doc.FindElements("//*") {
		if c.isKey(el.Tag) {
			c.add(el.Text())
		}
		for _, attr := range el.Attr {
			if c.isKey(attr.Key) {
				c.add(attr.Value)
			}
		}
		if key := el.SelectAttrValue("key", ""); key != "" && c.isKey(key) {
			c.add(el.SelectAttrValue("value", ""))
		}
	}
	return nil
}

// walk visits decoded TOML, YAML or JSON trees
func (c *collector) walk(node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			if c.isKey(k) {
				c.addAny(child)
			}
			c.walk(child)
		}
	case map[interface{}]interface{}:
		for k, child := range v {
			if ks, ok := k.(string); ok && c.isKey(ks) {
				c.addAny(child)
			}
			c.walk(child)
		}
	case []interface{}:
		for _, child := range v {
			c.walk(child)
		}
	}
}

func (c *collector) addAny(v interface{}) {
	switch val := v.(type) {
	case string:
		c.add(val)
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				c.add(s)
			}
		}
	}
}
