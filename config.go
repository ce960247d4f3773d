package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	yaml "go.yaml.in/yaml/v3"

	"github.com/jakebf/pillbox/toast"
)

// ─── Config ──────────────────────────────────────────────────────────────────

type config struct {
	Position   string `json:"position"`            // stack corner, e.g. "top-right"
	DurationMS int    `json:"duration_ms"`         // default toast lifetime
	CardWidth  int    `json:"card_width"`          // expanded card width in cells
	Fill       string `json:"fill,omitempty"`      // card background color
	WatchDir   string `json:"watch_dir,omitempty"` // directory whose changes become toasts
	LogFile    string `json:"log_file,omitempty"`  // JSON log path; "off" disables
	Autopilot  *bool  `json:"autopilot,omitempty"` // expand/collapse new toasts on their own
	Installed  string `json:"installed,omitempty"` // RFC3339 timestamp of first setup
}

var errBadPosition = errors.New("unknown position")

var positions = []toast.Position{
	toast.TopLeft, toast.TopCenter, toast.TopRight,
	toast.BottomLeft, toast.BottomCenter, toast.BottomRight,
}

func newDefaultConfig() config {
	return config{
		Position:   string(toast.TopRight),
		DurationMS: 6000,
		CardWidth:  44,
		Fill:       "#262626",
	}
}

func (c config) autopilot() bool { return c.Autopilot == nil || *c.Autopilot }

// decorate applies app-wide toast settings to d.
func (c config) decorate(d toast.Descriptor) toast.Descriptor {
	if !c.autopilot() {
		d.DisableAutopilot = true
	}
	return d
}

func (c config) logPath() string {
	switch c.LogFile {
	case "":
		return defaultLogPath()
	case "off":
		return ""
	}
	return expandHome(c.LogFile)
}

func (c config) validate() error {
	for _, p := range positions {
		if toast.Position(c.Position) == p {
			return nil
		}
	}
	return fmt.Errorf("%w %q", errBadPosition, c.Position)
}

// toastConfig maps the app config onto the engine's tunables. Geometry is in
// terminal cells: a pill is three rows tall including its border.
func (c config) toastConfig() toast.Config {
	tc := toast.DefaultConfig()
	tc.Position = toast.Position(c.Position)
	if c.DurationMS > 0 {
		tc.DefaultDuration = time.Duration(c.DurationMS) * time.Millisecond
		tc.ExitDuration = tc.DefaultDuration / 10
	}
	tc.CardWidth = float64(c.CardWidth)
	if tc.CardWidth < 20 {
		tc.CardWidth = 20
	}
	tc.CollapsedHeight = 3
	tc.PillPadding = 4
	tc.MinExpandedRatio = 2
	tc.MaxDragOffset = 2
	tc.DismissThreshold = 3
	if c.Fill != "" {
		tc.DefaultFill = c.Fill
	}
	return tc
}

// configDir returns the directory holding config.json or config.yaml.
func configDir() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(cfgDir, "pillbox"), nil
}

// configPath returns the first existing config file, preferring JSON, or the
// JSON path when none exists yet.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, "config.json"), nil
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// contractHome replaces the user's home directory prefix with "~/" for display.
func contractHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if rel, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~/" + rel
	}
	return path
}

// coerceToJSONBytes converts YAML config to JSON so both formats share the
// strict JSON decoder.
func coerceToJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	j, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// normalizeYAML ensures all map keys are strings so the result can be JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}

// decodeConfig parses a JSON or YAML config over the defaults. Unknown fields
// and unknown positions are errors.
func decodeConfig(path string, data []byte) (config, error) {
	j, err := coerceToJSONBytes(path, data)
	if err != nil {
		return newDefaultConfig(), err
	}
	cfg := newDefaultConfig()
	if len(bytes.TrimSpace(j)) == 0 || string(bytes.TrimSpace(j)) == "null" {
		return cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return newDefaultConfig(), fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if err := cfg.validate(); err != nil {
		return newDefaultConfig(), err
	}
	cfg.WatchDir = expandHome(cfg.WatchDir)
	return cfg, nil
}

// loadConfigRaw reads the config file without triggering first-time setup.
// Returns defaults if the file is missing or unreadable.
func loadConfigRaw() config {
	path, err := configPath()
	if err != nil {
		return newDefaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return newDefaultConfig()
	}
	cfg, err := decodeConfig(path, data)
	if err != nil {
		return newDefaultConfig()
	}
	return cfg
}

func loadConfig() config {
	path, err := configPath()
	if err != nil {
		return newDefaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return setupConfig(path)
		}
		return newDefaultConfig()
	}
	cfg, err := decodeConfig(path, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: bad config (%v), using defaults. Run `pillbox --setup` to fix.\n", err)
		return newDefaultConfig()
	}
	if cfg.Installed == "" && filepath.Ext(path) == ".json" {
		cfg.Installed = time.Now().Format(time.RFC3339)
		_ = saveConfig(path, cfg)
	}
	return cfg
}

func saveConfig(path string, cfg config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlConfig(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes to a temp file then renames it over path, so a crash
// mid-write can't leave a truncated file that gets silently replaced with defaults.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// yamlConfig encodes cfg with the same keys as its JSON form.
func yamlConfig(cfg config) ([]byte, error) {
	j, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(j, &m); err != nil {
		return nil, err
	}
	return yaml.Marshal(m)
}

func setupConfig(path string) config {
	scanner := bufio.NewScanner(os.Stdin)
	showWelcome(scanner)
	cfg := newDefaultConfig()
	cfg.Installed = time.Now().Format(time.RFC3339)
	return runSetup(path, cfg, scanner)
}

// showWelcome displays a brief orientation and waits for the user to press
// enter before continuing to setup.
func showWelcome(scanner *bufio.Scanner) {
	brand := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dim := lipgloss.NewStyle().Foreground(colorDim)
	key := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	name := brand.Render("pillbox")
	clear := strings.Repeat(" ", 10)

	// Cycle through the toast states: ◌ → ✓ → ! → ✕ → ✓
	icons := []struct {
		icon  string
		style lipgloss.Style
	}{
		{"◌", dim},
		{"✓", lipgloss.NewStyle().Bold(true).Foreground(colorGreen)},
		{"!", lipgloss.NewStyle().Bold(true).Foreground(colorYellow)},
		{"✕", lipgloss.NewStyle().Bold(true).Foreground(colorRed)},
		{"✓", lipgloss.NewStyle().Bold(true).Foreground(colorGreen)},
	}

	fmt.Println()
	for i, s := range icons {
		fmt.Printf("\r  %s %s%s", s.style.Render(s.icon), name, clear)
		if i < len(icons)-1 {
			time.Sleep(300 * time.Millisecond)
		}
	}
	fmt.Println()
	time.Sleep(400 * time.Millisecond)
	fmt.Println(dim.Render("  Toast notifications that grow from a pill into a card."))
	fmt.Println()
	time.Sleep(300 * time.Millisecond)
	fmt.Println("  " + key.Render("s/e/w/i") + dim.Render(" open a toast   ") + key.Render("l") + dim.Render(" fake upload   ") + key.Render("u") + dim.Render(" update latest"))
	fmt.Println("  " + key.Render("x") + dim.Render("       dismiss        ") + key.Render("d") + dim.Render(" demo          ") + key.Render("?") + dim.Render(" all keybindings"))
	fmt.Println()
	time.Sleep(200 * time.Millisecond)
	fmt.Println(dim.Render("  Hover a toast to read it. Drag it up or down to dismiss."))
	fmt.Println()

	fmt.Print(dim.Render("  Press enter to continue to setup..."))
	scanner.Scan()
	fmt.Println()
}

func runSetup(path string, current config, scanner *bufio.Scanner) config {
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle := lipgloss.NewStyle().Foreground(colorDim)
	if scanner == nil {
		scanner = bufio.NewScanner(os.Stdin)
	}

	fmt.Println(promptStyle.Render("  pillbox setup"))
	fmt.Println(dimStyle.Render("  Press enter to keep the current value."))
	fmt.Println()

	prompt := func(label, defVal string) string {
		fmt.Printf("%s %s: ", promptStyle.Render(label), dimStyle.Render("["+defVal+"]"))
		if scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				return line
			}
		}
		return defVal
	}

	cfg := current

	// Position
	var names []string
	for _, p := range positions {
		names = append(names, string(p))
	}
	fmt.Println(dimStyle.Render("  Corner the toast stack is anchored to:"))
	fmt.Println(dimStyle.Render("  " + strings.Join(names, ", ")))
	for {
		cfg.Position = prompt("Position        ", current.Position)
		if err := cfg.validate(); err == nil {
			break
		}
		fmt.Println(dimStyle.Render("  Not a known position."))
	}
	fmt.Println()

	// Duration
	fmt.Println(dimStyle.Render("  How long a toast stays before dismissing itself."))
	secs := prompt("Duration (sec)  ", strconv.FormatFloat(float64(current.DurationMS)/1000, 'f', -1, 64))
	if f, err := strconv.ParseFloat(secs, 64); err == nil && f > 0 {
		cfg.DurationMS = int(f * 1000)
	}
	fmt.Println()

	// Watch directory
	fmt.Println(dimStyle.Render("  Show a toast whenever a file in this directory changes."))
	watchDefault := contractHome(current.WatchDir)
	if watchDefault == "" {
		fmt.Printf("%s %s: ", promptStyle.Render("Watch directory "), dimStyle.Render("[]"))
	} else {
		fmt.Printf("%s %s: ", promptStyle.Render("Watch directory "), dimStyle.Render("["+watchDefault+"]")+" "+dimStyle.Render(`"none" to clear`))
	}
	if scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.EqualFold(line, "none"):
			cfg.WatchDir = ""
		default:
			cfg.WatchDir = expandHome(line)
		}
	}
	fmt.Println()

	if err := saveConfig(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
	} else {
		fmt.Printf("%s %s\n\n", dimStyle.Render("Saved to"), path)
	}
	return cfg
}
