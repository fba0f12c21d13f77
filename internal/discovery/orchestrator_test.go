package discovery

import (
	"context"
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

type fakeModule struct {
	name string
	deps []string
}

func (f fakeModule) Name() string                       { return f.name }
func (f fakeModule) Description() string                { return f.name }
func (f fakeModule) Dependencies() []string              { return f.deps }
func (f fakeModule) Priority() int                       { return 1 }
func (f fakeModule) CanDiscover(model.Device) bool       { return true }
func (f fakeModule) Validate([]any) bool                 { return true }
func (f fakeModule) Discover(context.Context, model.Device, map[string]OSTemplate) Result {
	return Result{Success: true, Module: f.name}
}

func TestDependenciesSatisfied(t *testing.T) {
	core := fakeModule{name: "core"}
	ports := fakeModule{name: "ports", deps: []string{"core"}}
	topology := fakeModule{name: "topology", deps: []string{"core", "ports"}}

	succeeded := map[string]bool{}
	if !dependenciesSatisfied(core, succeeded) {
		t.Fatal("module with no dependencies should always be satisfied")
	}
	if dependenciesSatisfied(ports, succeeded) {
		t.Fatal("ports should not be satisfied before core succeeds")
	}

	succeeded["core"] = true
	if !dependenciesSatisfied(ports, succeeded) {
		t.Fatal("ports should be satisfied once core has succeeded")
	}
	if dependenciesSatisfied(topology, succeeded) {
		t.Fatal("topology should not be satisfied until both core and ports have succeeded")
	}

	succeeded["ports"] = true
	if !dependenciesSatisfied(topology, succeeded) {
		t.Fatal("topology should be satisfied once both core and ports have succeeded")
	}
}

func TestSelectModulesAllWhenNoneSelected(t *testing.T) {
	o := &Orchestrator{
		Modules: []Module{
			fakeModule{name: "core"},
			fakeModule{name: "ports", deps: []string{"core"}},
			fakeModule{name: "topology", deps: []string{"core", "ports"}},
		},
	}
	session := &Session{}
	got := o.selectModules(session)
	if len(got) != 3 {
		t.Fatalf("expected all 3 modules when SelectedModules is empty, got %d", len(got))
	}
}

func TestSelectModulesFiltersBySelection(t *testing.T) {
	o := &Orchestrator{
		Modules: []Module{
			fakeModule{name: "core"},
			fakeModule{name: "ports", deps: []string{"core"}},
			fakeModule{name: "sensors", deps: []string{"core"}},
			fakeModule{name: "topology", deps: []string{"core", "ports"}},
		},
	}
	session := &Session{SelectedModules: []string{"sensors", "ports"}}
	got := o.selectModules(session)
	if len(got) != 2 {
		t.Fatalf("expected 2 selected modules, got %d", len(got))
	}
	names := map[string]bool{}
	for _, m := range got {
		names[m.Name()] = true
	}
	if !names["sensors"] || !names["ports"] {
		t.Fatalf("expected sensors and ports in selection, got %v", names)
	}
	if names["core"] || names["topology"] {
		t.Fatalf("unselected modules leaked into result: %v", names)
	}
}
