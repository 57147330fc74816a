package driver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mirck/internal/borrowck"
	"mirck/internal/mir"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := NewCacheKey(mir.Digest{1, 2, 3}, borrowck.Config{})
	errs := []borrowck.BorrowError{{
		Kind:     borrowck.UseAfterMove,
		Func:     "f",
		Local:    1,
		Other:    2,
		At:       mir.Location{Block: 0, Stmt: 2},
		Prior:    mir.Location{Block: 0, Stmt: 1},
		HasPrior: true,
	}}

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, errs); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, errs) {
		t.Errorf("got %+v, want %+v", got, errs)
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Error("entry survived DropAll")
	}
}

func TestCacheKeyDependsOnConfig(t *testing.T) {
	d := mir.Digest{9}
	base := NewCacheKey(d, borrowck.Config{})
	if NewCacheKey(d, borrowck.Config{Jobs: 8}) != base {
		t.Error("jobs must not change the key")
	}
	for _, cfg := range []borrowck.Config{
		{Mode: borrowck.ModeFailFast},
		{Dataflow: borrowck.DataflowFixedPoint},
		{SkipLifetimes: true},
	} {
		if NewCacheKey(d, cfg) == base {
			t.Errorf("config %+v shares the default key", cfg)
		}
	}
}

func TestCacheCorruptEntry(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := NewCacheKey(mir.Digest{7}, borrowck.Config{})
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
}
