package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
	"github.com/ymonitor/ymonitor/internal/workerpool"
)

// Entity-MIB physical table columns, walked in parallel.
var entityColumns = map[string]string{
	"descr":        "1.3.6.1.2.1.47.1.1.1.1.2",
	"vendorType":   "1.3.6.1.2.1.47.1.1.1.1.3",
	"containedIn":  "1.3.6.1.2.1.47.1.1.1.1.4",
	"class":        "1.3.6.1.2.1.47.1.1.1.1.5",
	"parentRelPos": "1.3.6.1.2.1.47.1.1.1.1.6",
	"name":         "1.3.6.1.2.1.47.1.1.1.1.7",
	"hwRev":        "1.3.6.1.2.1.47.1.1.1.1.8",
	"fwRev":        "1.3.6.1.2.1.47.1.1.1.1.9",
	"swRev":        "1.3.6.1.2.1.47.1.1.1.1.10",
	"serial":       "1.3.6.1.2.1.47.1.1.1.1.11",
	"mfgName":      "1.3.6.1.2.1.47.1.1.1.1.12",
	"modelName":    "1.3.6.1.2.1.47.1.1.1.1.13",
}

// EntityClass maps entPhysicalClass codes to a readable name.
func EntityClass(code int) string {
	classes := []string{"", "other", "unknown", "chassis", "backplane", "container",
		"powerSupply", "fan", "sensor", "module", "port", "stack", "cpu"}
	if code < 1 || code >= len(classes) {
		return "other"
	}
	return classes[code]
}

// EntityNode is one row of the Entity-MIB physical table, discovered by
// EntityModule.
type EntityNode struct {
	Index        int
	Descr        string
	VendorType   string
	ContainedIn  int
	Class        string
	ParentRelPos int
	Name         string
	HWRev        string
	FWRev        string
	SWRev        string
	Serial       string
	MfgName      string
	ModelName    string
}

// EntityModule walks the Entity-MIB physical table. Priority 4,
// depends on core. The 12 columns are walked concurrently through a
// bounded worker pool, generalizing the teacher's internal/workerpool
// (fixed-size goroutine pool + task queue) from agent task dispatch to
// fan-out MIB column walks.
type EntityModule struct {
	Transport *snmp.Transport
	Pool      *workerpool.Pool
}

func (EntityModule) Name() string           { return "entity" }
func (EntityModule) Description() string    { return "physical entity hierarchy" }
func (EntityModule) Dependencies() []string { return []string{"core"} }
func (EntityModule) Priority() int          { return 4 }

func (EntityModule) CanDiscover(device model.Device) bool {
	return device.SNMP.CredentialsComplete()
}

func (m EntityModule) Discover(ctx context.Context, device model.Device, templates map[string]OSTemplate) Result {
	started := time.Now()
	res := newResult(m.Name(), device, started)

	var mu sync.Mutex
	var wg sync.WaitGroup
	columnResults := make(map[string]map[int]snmp.Varbind, len(entityColumns))
	var walkErr error

	for col, oid := range entityColumns {
		col, oid := col, oid
		wg.Add(1)
		submitted := m.Pool.Submit(func() {
			defer wg.Done()
			r := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oid)
			mu.Lock()
			defer mu.Unlock()
			if !r.Success {
				if col == "descr" || col == "class" {
					walkErr = r.ToYMError("entity.walk." + col)
				}
				return
			}
			columnResults[col] = indexVarbinds(r.Varbinds)
		})
		if !submitted {
			wg.Done()
		}
	}
	wg.Wait()

	if walkErr != nil {
		res.Errors = append(res.Errors, walkErr)
		return res.finish(started)
	}

	descrs := columnResults["descr"]
	if len(descrs) == 0 {
		return res.finish(started)
	}

	var nodes []EntityNode
	for idx := range descrs {
		node := EntityNode{
			Index:        idx,
			Descr:        varbindString(columnResults["descr"][idx]),
			VendorType:   columnResults["vendorType"][idx].OidVal,
			ContainedIn:  varbindInt(columnResults["containedIn"][idx]),
			Class:        EntityClass(varbindInt(columnResults["class"][idx])),
			ParentRelPos: varbindInt(columnResults["parentRelPos"][idx]),
			Name:         varbindString(columnResults["name"][idx]),
			HWRev:        varbindString(columnResults["hwRev"][idx]),
			FWRev:        varbindString(columnResults["fwRev"][idx]),
			SWRev:        varbindString(columnResults["swRev"][idx]),
			Serial:       varbindString(columnResults["serial"][idx]),
			MfgName:      varbindString(columnResults["mfgName"][idx]),
			ModelName:    varbindString(columnResults["modelName"][idx]),
		}
		nodes = append(nodes, node)
		res.Discovered = append(res.Discovered, node)
	}

	return res.finish(started)
}

func (EntityModule) Validate(items []any) bool {
	for _, item := range items {
		if _, ok := item.(EntityNode); !ok {
			return false
		}
	}
	return true
}
