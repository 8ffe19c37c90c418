package collab

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/csvquery/fread/internal/typecode"
)

// sidecarDoc is the on-disk shape of a SidecarOverrides file: per-column
// forced type/name/drop. A forced type is looked up by column name, then
// by column index; name and drop overrides are looked up by index only, so
// a name or drop set under ByName has no effect. Modeled on internal/updatemgr/manager.go's
// sidecar-JSON-next-to-the-input idiom, generalized from per-row value
// overrides to per-column type/name/drop overrides.
type sidecarDoc struct {
	ByName  map[string]columnOverride `json:"byName"`
	ByIndex map[string]columnOverride `json:"byIndex"`
}

type columnOverride struct {
	Type *string `json:"type,omitempty"`
	Name *string `json:"name,omitempty"`
	Drop bool    `json:"drop,omitempty"`
}

// SidecarOverrides implements UserOverride by loading <csvPath>.fread.json
// if present, the way UpdateManager.Load looks for <csvPath>_updates.json.
type SidecarOverrides struct {
	mu   sync.RWMutex
	path string
	doc  sidecarDoc
}

// LoadSidecarOverrides loads the override file beside csvPath, if any; a
// missing file is not an error — it just means no overrides apply.
func LoadSidecarOverrides(csvPath string) (*SidecarOverrides, error) {
	abs, err := filepath.Abs(csvPath)
	if err != nil {
		return nil, err
	}
	path := abs + ".fread.json"

	so := &SidecarOverrides{
		path: path,
		doc: sidecarDoc{
			ByName:  make(map[string]columnOverride),
			ByIndex: make(map[string]columnOverride),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return so, nil
		}
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &so.doc); err != nil {
			return nil, err
		}
	}
	return so, nil
}

// Save persists so back to its sidecar path.
func (so *SidecarOverrides) Save() error {
	so.mu.RLock()
	defer so.mu.RUnlock()
	data, err := json.MarshalIndent(so.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(so.path, data, 0o644)
}

func (so *SidecarOverrides) ColumnType(name string, idx int) (typecode.Type, bool) {
	so.mu.RLock()
	defer so.mu.RUnlock()
	ov, ok := lookup(so.doc, name, idx)
	if !ok || ov.Type == nil {
		return 0, false
	}
	t, ok := parseTypeName(*ov.Type)
	return t, ok
}

func (so *SidecarOverrides) ColumnName(idx int) (string, bool) {
	so.mu.RLock()
	defer so.mu.RUnlock()
	ov, ok := lookup(so.doc, "", idx)
	if !ok || ov.Name == nil {
		return "", false
	}
	return *ov.Name, true
}

func (so *SidecarOverrides) Drop(idx int) bool {
	so.mu.RLock()
	defer so.mu.RUnlock()
	ov, ok := lookup(so.doc, "", idx)
	return ok && ov.Drop
}

// Finalize never aborts; a sidecar file only pins types/names/drops, it
// carries no separate cancel signal.
func (so *SidecarOverrides) Finalize([]typecode.Type, []string) bool { return true }

func lookup(doc sidecarDoc, name string, idx int) (columnOverride, bool) {
	if name != "" {
		if ov, ok := doc.ByName[name]; ok {
			return ov, true
		}
	}
	key := indexKey(idx)
	if ov, ok := doc.ByIndex[key]; ok {
		return ov, true
	}
	return columnOverride{}, false
}

func indexKey(idx int) string {
	if idx < 0 {
		idx = 0
	}
	return strconv.Itoa(idx)
}

func parseTypeName(s string) (typecode.Type, bool) {
	switch s {
	case "DROP":
		return typecode.Drop, true
	case "BOOL8":
		return typecode.Bool8, true
	case "INT32":
		return typecode.Int32, true
	case "INT64":
		return typecode.Int64, true
	case "FLOAT64":
		return typecode.Float64, true
	case "STRING":
		return typecode.String, true
	default:
		return 0, false
	}
}
