// Package preflight validates the host before any install step runs: tool
// availability, tool version floors, cluster reachability, required files,
// and advisory host resource floors.
//
// Missing tools, missing files, and an unreachable cluster are fatal.
// Unparsable version output and unmet resource floors only warn.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tool is a client binary the deployment requires on PATH.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// MinVersion, when non-empty, is the semantic version floor. The check
	// never blocks on version output it cannot parse.
	MinVersion string

	// Description explains what the tool is used for.
	Description string

	// InstallURL points at installation instructions.
	InstallURL string
}

// DefaultTools returns the tools every deploy needs.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			MinVersion:  "1.27.0",
			Description: "Required for manual inspection and recovery of the deployed stack",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
	}
}

// ProvisionTools returns the additional tools cluster provisioning needs.
func ProvisionTools() []Tool {
	return []Tool{
		{
			Name:        "oci",
			Description: "Required for creating the OKE cluster and node pool",
			InstallURL:  "https://docs.oracle.com/en-us/iaas/Content/API/SDKDocs/cliinstall.htm",
		},
	}
}

// Requirements collects everything Run checks.
type Requirements struct {
	Tools         []Tool
	RequiredFiles []string

	// MinCPUCores and MinMemoryMB are advisory floors; zero disables the check.
	MinCPUCores int
	MinMemoryMB int

	// PingCluster performs a lightweight cluster-info query. Nil skips the
	// reachability check.
	PingCluster func(ctx context.Context) error
}

// ToolMissingError reports a required tool absent from PATH.
type ToolMissingError struct {
	Name       string
	InstallURL string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("required tool %s not found in PATH (%s)", e.Name, e.InstallURL)
}

// VersionTooLowError reports a tool below its version floor.
type VersionTooLowError struct {
	Tool string
	Have string
	Want string
}

func (e *VersionTooLowError) Error() string {
	return fmt.Sprintf("%s version %s is below required %s", e.Tool, e.Have, e.Want)
}

// ClusterUnreachableError reports a failed cluster-info query.
type ClusterUnreachableError struct {
	Err error
}

func (e *ClusterUnreachableError) Error() string {
	return fmt.Sprintf("cluster unreachable: %v", e.Err)
}

func (e *ClusterUnreachableError) Unwrap() error { return e.Err }

// MissingFileError reports the first absent required file.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required file missing: %s", e.Path)
}

// Checker runs the preflight checks. The probe functions are fields so tests
// can substitute them.
type Checker struct {
	logger *slog.Logger

	lookPath    func(name string) (string, error)
	toolVersion func(ctx context.Context, name string) (string, error)
	statFile    func(path string) error
	numCPU      func() int
	memTotalMB  func() (int, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithLookPath substitutes the PATH lookup. Used in tests.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Checker) { c.lookPath = fn }
}

// WithToolVersion substitutes the version probe. Used in tests.
func WithToolVersion(fn func(context.Context, string) (string, error)) Option {
	return func(c *Checker) { c.toolVersion = fn }
}

// WithStatFile substitutes the file presence probe. Used in tests.
func WithStatFile(fn func(string) error) Option {
	return func(c *Checker) { c.statFile = fn }
}

// WithHostFacts substitutes CPU and memory detection. Used in tests.
func WithHostFacts(cpu func() int, mem func() (int, error)) Option {
	return func(c *Checker) {
		c.numCPU = cpu
		c.memTotalMB = mem
	}
}

// New returns a Checker probing the real host.
func New(logger *slog.Logger, opts ...Option) *Checker {
	c := &Checker{
		logger:      logger,
		lookPath:    exec.LookPath,
		toolVersion: toolVersion,
		statFile: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
		numCPU:     runtime.NumCPU,
		memTotalMB: memTotalMB,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs all checks in order: tools, versions, required files, cluster
// reachability, resource floors. It returns the first fatal finding; warnings
// are logged and never fail the run. No host state is mutated.
func (c *Checker) Run(ctx context.Context, req Requirements) error {
	for _, tool := range req.Tools {
		path, err := c.lookPath(tool.Name)
		if err != nil {
			return &ToolMissingError{Name: tool.Name, InstallURL: tool.InstallURL}
		}
		c.logger.Debug("tool found", "tool", tool.Name, "path", path)

		if tool.MinVersion == "" {
			continue
		}
		if err := c.checkVersion(ctx, tool); err != nil {
			return err
		}
	}

	// Fail fast on the first absent file; missing files are not aggregated.
	for _, path := range req.RequiredFiles {
		if err := c.statFile(path); err != nil {
			return &MissingFileError{Path: path}
		}
	}

	if req.PingCluster != nil {
		if err := req.PingCluster(ctx); err != nil {
			return &ClusterUnreachableError{Err: err}
		}
	}

	c.checkResourceFloors(req)
	return nil
}

// checkVersion compares the tool's self-reported version against its floor.
// Output that does not parse as a semantic version warns and passes.
func (c *Checker) checkVersion(ctx context.Context, tool Tool) error {
	raw, err := c.toolVersion(ctx, tool.Name)
	if err != nil {
		c.logger.Warn("could not read tool version, skipping floor check", "tool", tool.Name, "error", err)
		return nil
	}

	have, ok := parseVersion(raw)
	if !ok {
		c.logger.Warn("unparsable tool version, skipping floor check", "tool", tool.Name, "output", firstLine(raw))
		return nil
	}

	want, err := semver.NewVersion(tool.MinVersion)
	if err != nil {
		c.logger.Warn("invalid version floor, skipping", "tool", tool.Name, "floor", tool.MinVersion)
		return nil
	}

	if have.LessThan(want) {
		return &VersionTooLowError{Tool: tool.Name, Have: have.String(), Want: want.String()}
	}
	c.logger.Debug("tool version ok", "tool", tool.Name, "version", have.String())
	return nil
}

// checkResourceFloors warns when the host is below the advisory CPU or
// memory floor. Detection is best-effort; it never fails the run.
func (c *Checker) checkResourceFloors(req Requirements) {
	if req.MinCPUCores > 0 {
		if cores := c.numCPU(); cores < req.MinCPUCores {
			c.logger.Warn("host below CPU floor", "have", cores, "want", req.MinCPUCores)
		}
	}
	if req.MinMemoryMB > 0 {
		mem, err := c.memTotalMB()
		if err != nil {
			c.logger.Debug("could not detect host memory", "error", err)
		} else if mem < req.MinMemoryMB {
			c.logger.Warn("host below memory floor", "haveMB", mem, "wantMB", req.MinMemoryMB)
		}
	}
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// parseVersion extracts the first three-component semantic version from a
// tool's version output.
func parseVersion(raw string) (*semver.Version, bool) {
	m := versionPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, false
	}
	return v, true
}

// toolVersion runs the common version flags and returns the first output
// that succeeds.
func toolVersion(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, args := range [][]string{{"version", "--client"}, {"--version"}, {"version"}} {
		// #nosec G204 - name comes from the fixed Tool definitions
		out, err := exec.CommandContext(ctx, name, args...).Output()
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("no version flag succeeded for %s: %w", name, lastErr)
}

// memTotalMB reads MemTotal from /proc/meminfo.
func memTotalMB() (int, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, err
		}
		return kb / 1024, nil
	}
	return 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
