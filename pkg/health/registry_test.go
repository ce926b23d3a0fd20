package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/health"
)

func staticCheck(name string, status health.Status) func(context.Context) health.CheckResult {
	return func(context.Context) health.CheckResult {
		return health.CheckResult{Name: name, Status: status, Timestamp: time.Now()}
	}
}

func TestRegistryAllHealthy(t *testing.T) {
	reg := health.NewRegistry()
	reg.RegisterFunc("store", staticCheck("store", health.StatusHealthy))
	reg.RegisterFunc("cache", staticCheck("cache", health.StatusHealthy))

	result := reg.Check(context.Background())
	if !result.IsHealthy() {
		t.Fatalf("status = %s, want healthy", result.Status)
	}
	if len(result.Checks) != 2 {
		t.Fatalf("ran %d checks, want 2", len(result.Checks))
	}
}

func TestRegistryUnhealthyWins(t *testing.T) {
	reg := health.NewRegistry()
	reg.RegisterFunc("store", staticCheck("store", health.StatusHealthy))
	reg.RegisterFunc("cache", staticCheck("cache", health.StatusDegraded))
	reg.RegisterFunc("broker", staticCheck("broker", health.StatusUnhealthy))

	result := reg.Check(context.Background())
	if result.Status != health.StatusUnhealthy {
		t.Fatalf("status = %s, want unhealthy", result.Status)
	}
	if result.IsHealthy() {
		t.Error("IsHealthy on an unhealthy aggregate")
	}
}

func TestRegistryDegradedBeatsHealthy(t *testing.T) {
	reg := health.NewRegistry()
	reg.RegisterFunc("store", staticCheck("store", health.StatusHealthy))
	reg.RegisterFunc("cache", staticCheck("cache", health.StatusDegraded))

	result := reg.Check(context.Background())
	if result.Status != health.StatusDegraded {
		t.Fatalf("status = %s, want degraded", result.Status)
	}
}

func TestRegistryEmpty(t *testing.T) {
	result := health.NewRegistry().Check(context.Background())
	if !result.IsHealthy() {
		t.Fatalf("empty registry = %s, want healthy", result.Status)
	}
}

func TestRegistryReplaceAndUnregister(t *testing.T) {
	reg := health.NewRegistry()
	reg.RegisterFunc("store", staticCheck("store", health.StatusUnhealthy))
	reg.RegisterFunc("store", staticCheck("store", health.StatusHealthy))

	if result := reg.Check(context.Background()); !result.IsHealthy() {
		t.Fatalf("replacement did not take: %s", result.Status)
	}

	reg.Unregister("store")
	if result := reg.Check(context.Background()); len(result.Checks) != 0 {
		t.Fatalf("unregistered check still ran: %d checks", len(result.Checks))
	}
}

func TestCheckOne(t *testing.T) {
	reg := health.NewRegistry()
	reg.RegisterFunc("store", staticCheck("store", health.StatusHealthy))

	result, err := reg.CheckOne(context.Background(), "store")
	if err != nil {
		t.Fatalf("check one: %v", err)
	}
	if result.Name != "store" || result.Status != health.StatusHealthy {
		t.Errorf("result = %+v", result)
	}

	if _, err := reg.CheckOne(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown check")
	}
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestPingerChecker(t *testing.T) {
	healthy := health.NewPingerChecker("store", stubPinger{}, time.Second)
	result := healthy.Check(context.Background())
	if result.Status != health.StatusHealthy || result.Name != "store" {
		t.Errorf("result = %+v", result)
	}

	down := health.NewPingerChecker("store", stubPinger{err: errors.New("connection refused")}, time.Second)
	result = down.Check(context.Background())
	if result.Status != health.StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", result.Status)
	}
	if result.Error == "" {
		t.Error("unhealthy result carries no error")
	}
}

func TestLivenessChecker(t *testing.T) {
	checker := health.NewLivenessChecker("live")
	if result := checker.Check(context.Background()); result.Status != health.StatusHealthy {
		t.Errorf("liveness = %s", result.Status)
	}
	if checker.Name() != "live" {
		t.Errorf("name = %q", checker.Name())
	}
}
