package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	updateCheckInterval = 24 * time.Hour
	updateRequestTTL    = 5 * time.Second
	updateRepoOwner     = "jakebf"
	updateRepoName      = "pillbox"
)

var (
	updateAPIBaseURL    = "https://api.github.com"
	updateNow           = time.Now
	fetchLatestReleaseF = fetchLatestRelease
)

// updateState is cached next to the config so the release API is hit at most
// once a day and each new release is announced once.
type updateState struct {
	CheckedAt       time.Time `json:"checked_at"`
	LatestVersion   string    `json:"latest_version,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	NotifiedVersion string    `json:"notified_version,omitempty"`
}

type releaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

func updateStatePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "update-check.json"), nil
}

func loadUpdateState(path string) (updateState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return updateState{}, nil
		}
		return updateState{}, err
	}
	var st updateState
	if err := json.Unmarshal(data, &st); err != nil {
		return updateState{}, err
	}
	return st, nil
}

func saveUpdateState(path string, st updateState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func fetchLatestRelease(owner, repo string) (*releaseInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), updateRequestTTL)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(updateAPIBaseURL, "/"), owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "pillbox-update-check")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github latest release: %s", resp.Status)
	}

	var rel releaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, err
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("github latest release missing tag_name")
	}
	return &rel, nil
}

// checkForUpdate reports a release newer than currentVersion that has not
// been announced yet. Development builds never check.
func checkForUpdate(currentVersion string) tea.Cmd {
	currentVersion = strings.TrimSpace(currentVersion)
	if currentVersion == "" || currentVersion == "dev" {
		return nil
	}
	return func() tea.Msg {
		path, err := updateStatePath()
		if err != nil {
			return nil
		}
		st, err := loadUpdateState(path)
		if err != nil || st.CheckedAt.IsZero() || updateNow().Sub(st.CheckedAt) >= updateCheckInterval {
			latest, err := fetchLatestReleaseF(updateRepoOwner, updateRepoName)
			if err != nil {
				// A failed check does not advance checked_at.
				return nil
			}
			st.CheckedAt = updateNow().UTC()
			st.LatestVersion = latest.TagName
			st.ReleaseURL = latest.HTMLURL
			_ = saveUpdateState(path, st)
		}
		if st.LatestVersion == st.NotifiedVersion || !isNewerVersion(currentVersion, st.LatestVersion) {
			return nil
		}
		return updateAvailableMsg{version: st.LatestVersion, url: st.ReleaseURL}
	}
}

// markUpdateNotified records that the toast for version has been shown.
func markUpdateNotified(version string) tea.Cmd {
	return func() tea.Msg {
		path, err := updateStatePath()
		if err != nil {
			return nil
		}
		st, err := loadUpdateState(path)
		if err != nil {
			return nil
		}
		st.NotifiedVersion = version
		_ = saveUpdateState(path, st)
		return nil
	}
}

// ─── Semver ──────────────────────────────────────────────────────────────────

type semver struct {
	major, minor, patch int
	prerelease          string
}

func isNewerVersion(current, latest string) bool {
	cur, ok := parseSemver(current)
	if !ok {
		return false
	}
	next, ok := parseSemver(latest)
	if !ok {
		return false
	}
	return compareSemver(next, cur) > 0
}

// parseSemver accepts an optional "v" prefix and ignores build metadata.
func parseSemver(s string) (semver, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, _, _ = strings.Cut(s, "+")
	s, pre, _ := strings.Cut(s, "-")
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return semver{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, ok := parseDigits(p)
		if !ok {
			return semver{}, false
		}
		nums[i] = n
	}
	return semver{major: nums[0], minor: nums[1], patch: nums[2], prerelease: pre}, true
}

func parseDigits(s string) (int, bool) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func compareSemver(a, b semver) int {
	if c := cmp.Compare(a.major, b.major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.minor, b.minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.patch, b.patch); c != 0 {
		return c
	}
	return comparePrerelease(a.prerelease, b.prerelease)
}

// comparePrerelease ranks a stable release above any prerelease. Identifiers
// compare numerically when both are digits, lexically otherwise.
func comparePrerelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aNum := parseDigits(as[i])
		bn, bNum := parseDigits(bs[i])
		switch {
		case aNum && bNum:
			if c := cmp.Compare(an, bn); c != 0 {
				return c
			}
		case aNum:
			return -1
		case bNum:
			return 1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(as), len(bs))
}
