package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopStoreHooks{}
	s.OnLoadStart(ctx, "day01", RoleReference)
	s.OnLoadComplete(ctx, "day01", RoleReference, 10, 20, time.Second, nil)
	s.OnUnload(ctx, "day01", 1024)

	p := NoopPassHooks{}
	p.OnPassComplete(ctx, "day02", 5, 20, time.Second)
	p.OnSnapshotSkipped(ctx, "day03", errors.New("corrupt"))

	e := NoopExportHooks{}
	e.OnExportComplete(ctx, 3, 1, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Pass().(NoopPassHooks); !ok {
		t.Error("Pass() should return NoopPassHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customPass := &testPassHooks{}
	SetPassHooks(customPass)
	if Pass() != customPass {
		t.Error("SetPassHooks should set custom hooks")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pass().(NoopPassHooks); !ok {
		t.Error("Reset() should restore NoopPassHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPassHooks{}
	SetPassHooks(custom)
	SetPassHooks(nil)

	if Pass() != custom {
		t.Error("SetPassHooks(nil) should be ignored")
	}
}

type testStoreHooks struct{ NoopStoreHooks }

type testPassHooks struct {
	NoopPassHooks
	skipped []string
}

func (h *testPassHooks) OnSnapshotSkipped(_ context.Context, id string, _ error) {
	h.skipped = append(h.skipped, id)
}

type testExportHooks struct{ NoopExportHooks }
