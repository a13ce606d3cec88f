//go:build integration

package store

import (
	"testing"

	"github.com/newtron-network/bgpprop/internal/testutil"
)

func TestPublishRedis(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	ctx := testutil.Context(t)

	const hash = "bgpprop-integration"
	testutil.DeleteHash(t, 0, hash)
	t.Cleanup(func() { testutil.DeleteHash(t, 0, hash) })

	p := NewPublisher(Options{Addr: testutil.RedisAddr()})
	defer p.Close()

	if err := p.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := p.Publish(ctx, hash, sampleRecord()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := testutil.ReadHash(t, 0, hash)
	want := map[string]string{
		"spine1 2018091412:00:00 service quagga restart": "None",
		"result.detail": "",
		"result.status": "Passed",
	}
	if len(got) != len(want) {
		t.Fatalf("hash has %d fields, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %q = %q, want %q", k, got[k], v)
		}
	}
}
