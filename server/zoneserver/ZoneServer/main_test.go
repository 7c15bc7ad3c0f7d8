package main

import (
	"strings"
	"testing"
)

func TestRunReturnsStoreOpenError(t *testing.T) {
	t.Setenv("A3_PERSISTENCE_MODE", "postgres")
	t.Setenv("A3_SETTINGS_DSN", "")
	t.Setenv("A3_REDIS_ADDR", "")

	err := run()
	if err == nil {
		t.Fatalf("expected error without a postgres DSN")
	}
	if !strings.Contains(err.Error(), "open settings store") {
		t.Fatalf("err=%v want open settings store failure", err)
	}
}
