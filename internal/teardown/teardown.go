// Package teardown is the best-effort reverse of the install pipeline. It
// never fails its caller: uninstall errors are logged, not-found is success,
// and namespace deletion does not wait for reclamation.
package teardown

import (
	"context"
	"log/slog"

	"github.com/obstack/obstack/internal/release"
)

// NamespaceDeleter force-deletes a namespace without waiting.
type NamespaceDeleter interface {
	DeleteNamespace(ctx context.Context, name string) error
}

// Teardown uninstalls the stack in reverse dependency order.
type Teardown struct {
	installer  release.Installer
	namespaces NamespaceDeleter
	stopAll    func()
	logger     *slog.Logger
}

// New returns a Teardown. stopAll kills any live verification tunnels
// before releases are removed; pass a no-op when none exist.
func New(installer release.Installer, namespaces NamespaceDeleter, stopAll func(), logger *slog.Logger) *Teardown {
	if stopAll == nil {
		stopAll = func() {}
	}
	return &Teardown{installer: installer, namespaces: namespaces, stopAll: stopAll, logger: logger}
}

// Run tears the stack down: tunnels first, then releases in reverse
// dependency order, then the namespaces with zero grace. Every error is
// swallowed after logging; invoking teardown against a cluster that never
// saw an install completes cleanly.
func (t *Teardown) Run(ctx context.Context, ordered []release.Release) {
	t.stopAll()

	for _, rel := range release.Reverse(ordered) {
		if err := t.installer.Uninstall(rel); err != nil {
			t.logger.Warn("uninstall failed, continuing", "release", rel.Name, "error", err)
			continue
		}
		t.logger.Info("release uninstalled", "release", rel.Name, "namespace", rel.Namespace)
	}

	for _, ns := range t.namespaceSet(ordered) {
		if err := t.namespaces.DeleteNamespace(ctx, ns); err != nil {
			t.logger.Warn("namespace delete failed, continuing", "namespace", ns, "error", err)
			continue
		}
		t.logger.Info("namespace deletion requested", "namespace", ns)
	}

	t.logger.Info("teardown complete; resource reclamation should finish shortly")
}

// namespaceSet returns the distinct namespaces in reverse install order.
func (t *Teardown) namespaceSet(ordered []release.Release) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rel := range release.Reverse(ordered) {
		if !seen[rel.Namespace] {
			seen[rel.Namespace] = true
			out = append(out, rel.Namespace)
		}
	}
	return out
}
