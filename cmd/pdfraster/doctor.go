package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	pdfraster "github.com/alnah/go-pdfraster"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string        `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo    `json:"chrome"`
	Env      envInfo       `json:"environment"`
	System   systemInfo    `json:"system"`
	Locators []locatorInfo `json:"locators"`
	Warnings []string      `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
	PDFJSDir      string `json:"pdfjs_dir,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// locatorInfo is the probe and verification outcome for one engine location.
type locatorInfo struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	Local     bool   `json:"local"`
	Reachable bool   `json:"reachable"`
	LatencyMs int64  `json:"latency_ms"`
	Verified  bool   `json:"verified"`
	Error     string `json:"error,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return reportError(fmt.Errorf("%w: %v", ErrUsage, err), env)
	}

	opts, timeout, err := doctorOptions(flags, env)
	if err != nil {
		return reportError(err, env)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result := runDoctor(ctx, env, opts)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// doctorOptions resolves config and flags into converter options and the
// overall timeout (0 = none).
func doctorOptions(flags *doctorFlags, env *Environment) ([]pdfraster.Option, time.Duration, error) {
	cfg, err := loadConfig(flags.common.config, loadEnvConfig())
	if err != nil {
		return nil, 0, err
	}
	mergeEngineFlags(flags.engine, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	locators, err := buildLocators(cfg)
	if err != nil {
		return nil, 0, err
	}
	opts := converterOptions(cfg, locators, newLogger(env.Stderr, flags.common))
	return opts, cfg.Engine.TimeoutDuration(), nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment, opts []pdfraster.Option) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
			PDFJSDir:   os.Getenv(pdfraster.EnvPDFJSDir),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	checkLocators(ctx, result, env.NewDiagnoser, opts)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- browser path from env or lookup
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}

	if dir := result.Env.PDFJSDir; dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s=%s is not a directory", pdfraster.EnvPDFJSDir, dir))
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the detected signal.
func isContainer() (bool, string) {
	if os.Getenv("PDFRASTER_CONTAINER") == "1" {
		return true, "PDFRASTER_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for engine shell pages.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "pdfraster-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// checkLocators probes and verifies every engine location. Verification
// needs a browser, so it is skipped when Chrome is missing.
func checkLocators(ctx context.Context, result *doctorResult, newDiagnoser func(...pdfraster.Option) (Diagnoser, error), opts []pdfraster.Option) {
	if !result.Chrome.Found {
		result.Warnings = append(result.Warnings, "Engine locations not checked: Chrome not found")
		return
	}

	d, err := newDiagnoser(opts...)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot check engine locations: %v", err))
		return
	}
	defer func() { _ = d.Close() }()

	verified := 0
	for _, diag := range d.Diagnose(ctx) {
		info := locatorInfo{
			Name:      diag.Locator.Name(),
			URI:       diag.Locator.URI(),
			Local:     diag.Locator.IsLocal(),
			Reachable: diag.Probe.Reachable,
			LatencyMs: diag.Probe.LatencyMs(),
			Verified:  diag.Verified,
		}
		switch {
		case !diag.Probe.Reachable && diag.Probe.Err != nil:
			info.Error = diag.Probe.Err.Error()
		case diag.Probe.Reachable && !diag.Verified:
			info.Error = pdfraster.ErrVerificationFailed.Error()
		}
		if diag.Verified {
			verified++
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Engine location %s failed: %s", info.Name, info.Error))
		}
		result.Locators = append(result.Locators, info)
	}

	if verified == 0 {
		result.Errors = append(result.Errors,
			"No engine location passed verification; conversions will produce placeholder pages")
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pdfraster doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Locators) > 0 {
		fmt.Fprintln(w, "Engine locations")
		for _, l := range r.Locators {
			switch {
			case l.Verified:
				fmt.Fprintf(w, "  [OK] %s (%s, %dms)\n", l.Name, l.URI, l.LatencyMs)
			case l.Reachable:
				fmt.Fprintf(w, "  [WARN] %s reachable but not working (%s)\n", l.Name, l.URI)
			default:
				fmt.Fprintf(w, "  [WARN] %s unreachable (%s): %s\n", l.Name, l.URI, l.Error)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
