package checks

import "context"

// CatalogVersion identifies the default catalog. Version 1 held the first
// seven checks; version 2 added the test script, engine, outdated and audit
// checks.
const CatalogVersion = 2

// Lockfiles. npm audit only reads the npm ones.
const (
	NpmLockfile    = "package-lock.json"
	PnpmLockfile   = "pnpm-lock.yaml"
	ShrinkwrapFile = "npm-shrinkwrap.json"
)

// DefaultCatalog returns the maintenance catalog in evaluation order.
func DefaultCatalog() *Registry {
	return NewRegistry(
		Check{
			Name:      "package.json exists",
			Fix:       "Run: npm init -y",
			Predicate: PredicateFunc(manifestExists),
		},
		Check{
			Name:      "README exists",
			Fix:       "Create a README.md describing your project",
			Predicate: AnyFile("{README.md,README,README.txt,README.rst}"),
		},
		Check{
			Name:      "LICENSE exists",
			Fix:       "Add a LICENSE file. Try: npx license mit",
			Predicate: AnyFile("{LICENSE,LICENSE.md,LICENSE.txt}"),
		},
		Check{
			Name:      "CHANGELOG exists",
			Fix:       "Create CHANGELOG.md to track versions",
			Predicate: AnyFile("{CHANGELOG.md,CHANGELOG}"),
		},
		Check{
			Name:      ".gitignore exists",
			Fix:       "Add .gitignore. Try: npx gitignore node",
			Predicate: AnyFile(".gitignore"),
		},
		Check{
			Name:      "No package-lock.json AND pnpm-lock.yaml (pick one)",
			Fix:       "Remove one lockfile to avoid conflicts",
			Predicate: Exclusive{Paths: []string{NpmLockfile, PnpmLockfile}},
		},
		Check{
			Name:      "CI workflow exists",
			Fix:       "Add .github/workflows/ci.yml for automated testing",
			Predicate: AnyFile(".github/workflows/ci.{yml,yaml}"),
		},
		Check{
			Name:      "Test script defined",
			Fix:       `Add a real "test" script to package.json`,
			Predicate: TestScript{},
		},
		Check{
			Name:      "Node engine declared",
			Fix:       `Add "engines": {"node": ">=18"} to package.json`,
			Predicate: EngineConstraint{Engine: "node"},
		},
		Check{
			Name:      "No outdated dependencies",
			Fix:       "Run: npm outdated, then npm update",
			Predicate: NoOutdated{},
		},
		Check{
			Name:      "No high/critical vulnerabilities",
			Fix:       "Run: npm audit fix",
			Predicate: NoSevereVulnerabilities{
				Lockfiles:  []string{NpmLockfile, ShrinkwrapFile},
				InstallDir: "node_modules",
			},
		},
	)
}

func manifestExists(_ context.Context, p *Project) (bool, error) {
	return p.HasManifest(), nil
}
