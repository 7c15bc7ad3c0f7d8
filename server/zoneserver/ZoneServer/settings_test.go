package main

import (
	"math"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	got := DefaultSettings()
	if got.Version != CurrentVersion {
		t.Fatalf("version=%q want %q", got.Version, CurrentVersion)
	}
	if got.CatapultReloadSeconds != 6 || got.BallistaReloadSeconds != 3 {
		t.Fatalf("durations=%v/%v want 6/3", got.CatapultReloadSeconds, got.BallistaReloadSeconds)
	}
}

func TestVersionLessUsesStringOrdering(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{a: "0.9.0", b: "1.0.0", want: true},
		{a: "1.0.0", b: "1.0.0", want: false},
		{a: "1.0.0", b: "1.0.1", want: true},
		{a: "", b: "1.0.0", want: true},
		{a: "1.10.0", b: "1.9.0", want: true},
		{a: "2.0.0", b: "1.0.1", want: false},
	}
	for _, tc := range tests {
		if got := versionLess(tc.a, tc.b); got != tc.want {
			t.Fatalf("versionLess(%q, %q)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMigrateSettings(t *testing.T) {
	tests := []struct {
		name        string
		in          Settings
		want        Settings
		wantChanged bool
	}{
		{
			name:        "below threshold resets",
			in:          Settings{Version: "0.9.0", CatapultReloadSeconds: 1, BallistaReloadSeconds: 1},
			want:        DefaultSettings(),
			wantChanged: true,
		},
		{
			name:        "missing version resets",
			in:          Settings{CatapultReloadSeconds: 1, BallistaReloadSeconds: 1},
			want:        DefaultSettings(),
			wantChanged: true,
		},
		{
			name:        "threshold keeps durations",
			in:          Settings{Version: "1.0.0", CatapultReloadSeconds: 10, BallistaReloadSeconds: 5},
			want:        Settings{Version: CurrentVersion, CatapultReloadSeconds: 10, BallistaReloadSeconds: 5},
			wantChanged: true,
		},
		{
			name: "current untouched",
			in:   Settings{Version: CurrentVersion, CatapultReloadSeconds: 2, BallistaReloadSeconds: 1},
			want: Settings{Version: CurrentVersion, CatapultReloadSeconds: 2, BallistaReloadSeconds: 1},
		},
		{
			name: "newer untouched",
			in:   Settings{Version: "9.0.0", CatapultReloadSeconds: 2, BallistaReloadSeconds: 1},
			want: Settings{Version: "9.0.0", CatapultReloadSeconds: 2, BallistaReloadSeconds: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := migrateSettings(tc.in, nil)
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
			if changed != tc.wantChanged {
				t.Fatalf("changed=%v want %v", changed, tc.wantChanged)
			}
		})
	}
}

func TestSanitizeSettingsReplacesUnusableDurations(t *testing.T) {
	in := Settings{
		Version:               CurrentVersion,
		CatapultReloadSeconds: -2,
		BallistaReloadSeconds: float32(math.NaN()),
	}
	got, changed := sanitizeSettings(in, nil)
	if !changed {
		t.Fatalf("expected change")
	}
	if got.CatapultReloadSeconds != defaultCatapultReloadSeconds || got.BallistaReloadSeconds != defaultBallistaReloadSeconds {
		t.Fatalf("got %+v want defaults", got)
	}

	zero := Settings{Version: CurrentVersion, CatapultReloadSeconds: 0, BallistaReloadSeconds: 0.5}
	got, _ = sanitizeSettings(zero, nil)
	if got.CatapultReloadSeconds != defaultCatapultReloadSeconds || got.BallistaReloadSeconds != 0.5 {
		t.Fatalf("got %+v want catapult default, ballista 0.5", got)
	}

	inf := Settings{Version: CurrentVersion, CatapultReloadSeconds: float32(math.Inf(1)), BallistaReloadSeconds: 1}
	got, _ = sanitizeSettings(inf, nil)
	if got.CatapultReloadSeconds != defaultCatapultReloadSeconds {
		t.Fatalf("catapult=%v want default", got.CatapultReloadSeconds)
	}
}

func TestSanitizeSettingsKeepsValidValues(t *testing.T) {
	in := Settings{Version: CurrentVersion, CatapultReloadSeconds: 0.1, BallistaReloadSeconds: 30}
	got, changed := sanitizeSettings(in, nil)
	if changed || got != in {
		t.Fatalf("got %+v changed=%v want unchanged", got, changed)
	}
}
