package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakebf/pillbox/toast"
)

func TestCheckForUpdateSkipsDev(t *testing.T) {
	if cmd := checkForUpdate("dev"); cmd != nil {
		t.Fatal("expected nil cmd for dev version")
	}
	if cmd := checkForUpdate(" "); cmd != nil {
		t.Fatal("expected nil cmd for empty version")
	}
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		newer   bool
	}{
		{current: "v0.1.0", latest: "v0.2.0", newer: true},
		{current: "0.1.0", latest: "v0.1.0", newer: false},
		{current: "v1.0.0-beta.1", latest: "v1.0.0", newer: true},
		{current: "v1.0.0-beta.2", latest: "v1.0.0-beta.10", newer: true},
		{current: "v1.0.0-alpha", latest: "v1.0.0-alpha.1", newer: true},
		{current: "v1.0.0-1", latest: "v1.0.0-rc", newer: true},
		{current: "v1.2.3", latest: "v1.2.3+build.7", newer: false},
		{current: "v1.2.3", latest: "not-a-version", newer: false},
		{current: "v1.2", latest: "v1.3.0", newer: false},
	}
	for _, tc := range tests {
		if got := isNewerVersion(tc.current, tc.latest); got != tc.newer {
			t.Fatalf("isNewerVersion(%q, %q) = %v, want %v", tc.current, tc.latest, got, tc.newer)
		}
	}
}

func TestCheckForUpdateUsesFreshCache(t *testing.T) {
	statePath := setupUpdateStatePath(t)
	fixedNow := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	overrideUpdateGlobals(t, fixedNow)

	st := updateState{
		CheckedAt:     fixedNow.Add(-1 * time.Hour),
		LatestVersion: "v0.2.0",
		ReleaseURL:    "https://github.com/jakebf/pillbox/releases/tag/v0.2.0",
	}
	if err := saveUpdateState(statePath, st); err != nil {
		t.Fatalf("saveUpdateState: %v", err)
	}

	var calls int
	fetchLatestReleaseF = func(owner, repo string) (*releaseInfo, error) {
		calls++
		return &releaseInfo{TagName: "v9.9.9", HTMLURL: "https://example.invalid"}, nil
	}

	msg := checkForUpdate("v0.1.0")()
	upd, ok := msg.(updateAvailableMsg)
	if !ok {
		t.Fatalf("expected updateAvailableMsg, got %T", msg)
	}
	if upd.version != "v0.2.0" {
		t.Fatalf("cached version = %q, want v0.2.0", upd.version)
	}
	if calls != 0 {
		t.Fatalf("expected 0 API calls when cache is fresh, got %d", calls)
	}
}

func TestCheckForUpdateFetchSuccessWritesCache(t *testing.T) {
	statePath := setupUpdateStatePath(t)
	fixedNow := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	overrideUpdateGlobals(t, fixedNow)

	var calls int
	fetchLatestReleaseF = func(owner, repo string) (*releaseInfo, error) {
		calls++
		if owner != "jakebf" || repo != "pillbox" {
			t.Errorf("fetched %s/%s", owner, repo)
		}
		return &releaseInfo{TagName: "v0.3.0", HTMLURL: "https://github.com/jakebf/pillbox/releases/tag/v0.3.0"}, nil
	}

	msg := checkForUpdate("v0.1.0")()
	upd, ok := msg.(updateAvailableMsg)
	if !ok {
		t.Fatalf("expected updateAvailableMsg, got %T", msg)
	}
	if upd.version != "v0.3.0" || calls != 1 {
		t.Fatalf("version = %q after %d calls", upd.version, calls)
	}

	st, err := loadUpdateState(statePath)
	if err != nil {
		t.Fatalf("loadUpdateState: %v", err)
	}
	if !st.CheckedAt.Equal(fixedNow) || st.LatestVersion != "v0.3.0" {
		t.Fatalf("cache = %+v", st)
	}
}

func TestCheckForUpdateFetchFailureDoesNotWriteCache(t *testing.T) {
	statePath := setupUpdateStatePath(t)
	overrideUpdateGlobals(t, time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC))
	fetchLatestReleaseF = func(owner, repo string) (*releaseInfo, error) {
		return nil, fmt.Errorf("offline")
	}

	if msg := checkForUpdate("v0.1.0")(); msg != nil {
		t.Fatalf("expected nil msg on failure, got %T", msg)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Fatalf("failed check should not write %s", statePath)
	}
}

func TestUpdateAnnouncedOnce(t *testing.T) {
	setupUpdateStatePath(t)
	fixedNow := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	overrideUpdateGlobals(t, fixedNow)
	fetchLatestReleaseF = func(owner, repo string) (*releaseInfo, error) {
		return &releaseInfo{TagName: "v0.3.0"}, nil
	}

	if _, ok := checkForUpdate("v0.1.0")().(updateAvailableMsg); !ok {
		t.Fatal("first check should announce")
	}
	if msg := markUpdateNotified("v0.3.0")(); msg != nil {
		t.Fatalf("markUpdateNotified returned %T", msg)
	}
	if msg := checkForUpdate("v0.1.0")(); msg != nil {
		t.Fatalf("already announced, got %T", msg)
	}
}

func TestFetchLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/jakebf/pillbox/releases/latest" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "pillbox-update-check" {
			t.Errorf("User-Agent = %q", ua)
		}
		json.NewEncoder(w).Encode(releaseInfo{TagName: "v1.4.0", HTMLURL: "https://github.com/jakebf/pillbox/releases/tag/v1.4.0"})
	}))
	defer srv.Close()
	overrideUpdateGlobals(t, time.Now())
	updateAPIBaseURL = srv.URL + "/"

	rel, err := fetchLatestRelease("jakebf", "pillbox")
	if err != nil {
		t.Fatalf("fetchLatestRelease: %v", err)
	}
	if rel.TagName != "v1.4.0" {
		t.Errorf("TagName = %q", rel.TagName)
	}
	if _, err := fetchLatestRelease("jakebf", "missing"); err == nil {
		t.Error("404 should be an error")
	}
}

func TestUpdateAvailableOpensToast(t *testing.T) {
	app := testModel(t)
	m2, cmd := app.m.Update(updateAvailableMsg{version: "v2.0.0", url: "https://github.com/jakebf/pillbox/releases/tag/v2.0.0"})
	app.m = m2.(model)
	if cmd == nil {
		t.Error("expected a command marking the release as announced")
	}
	r := app.record(t, "update")
	if r.State != toast.StateAction || r.Button == nil {
		t.Fatalf("update toast = %s button=%v", r.State, r.Button)
	}
	if r.Duration != 12*time.Second {
		t.Errorf("Duration = %v, want 12s", r.Duration)
	}
	app.m.engine.Activate("update")
	if len(app.copied) != 1 || app.copied[0] != "https://github.com/jakebf/pillbox/releases/tag/v2.0.0" {
		t.Errorf("copied = %v", app.copied)
	}
}

func setupUpdateStatePath(t *testing.T) string {
	t.Helper()
	cfgRoot := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgRoot)
	path, err := updateStatePath()
	if err != nil {
		t.Fatalf("updateStatePath: %v", err)
	}
	return path
}

func overrideUpdateGlobals(t *testing.T, now time.Time) {
	t.Helper()
	origBase := updateAPIBaseURL
	origNow := updateNow
	origFetch := fetchLatestReleaseF
	updateNow = func() time.Time { return now }
	t.Cleanup(func() {
		updateAPIBaseURL = origBase
		updateNow = origNow
		fetchLatestReleaseF = origFetch
	})
}

func TestUpdateStatePathFollowsConfigDir(t *testing.T) {
	cfgRoot := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgRoot)
	path, err := updateStatePath()
	if err != nil {
		t.Fatalf("updateStatePath: %v", err)
	}
	want := filepath.Join(cfgRoot, "pillbox", "update-check.json")
	if path != want {
		t.Fatalf("updateStatePath = %q, want %q", path, want)
	}
}
