package pkgmgr

import (
	"context"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// Rule names, reported in PackageManagerChoice.Rule.
const (
	RuleManifestField = "manifest-field"
	RuleBunLock       = "bun-lock"
	RulePnpmLock      = "pnpm-lock"
	RuleYarnLock      = "yarn-lock"
	RuleNpmLock       = "npm-lock"
	RuleFallbackNpm   = "fallback-npm"
)

// Probe is the state a Rule inspects: the project directory and a way to
// ask whether a manager executable works.
type Probe struct {
	Dir string

	ctx    context.Context
	runner command.Runner
	seen   map[string]bool
}

// Available reports whether `<name> --version` succeeds. Answers are
// remembered for the lifetime of the Probe, i.e. one detection.
func (p *Probe) Available(name string) bool {
	if ok, done := p.seen[name]; done {
		return ok
	}
	ok := command.Available(p.ctx, p.runner, p.Dir, name)
	p.seen[name] = ok
	return ok
}

// Rule is one step of package manager detection. Match returns the manager
// the rule selects, or false to fall through to the next rule.
type Rule struct {
	Name  string
	Match func(p *Probe) (Manager, bool)
}

// Rules returns the detection rules in priority order. The first rule that
// matches wins.
func Rules() []Rule {
	return []Rule{
		{Name: RuleManifestField, Match: matchManifestField},
		{Name: RuleBunLock, Match: matchLockFile(bun)},
		{Name: RulePnpmLock, Match: matchLockFile(pnpm)},
		{Name: RuleYarnLock, Match: matchLockFile(yarn)},
		{Name: RuleNpmLock, Match: matchLockFile(npm)},
		{Name: RuleFallbackNpm, Match: matchFallback},
	}
}

// Detect runs the rules against dir and returns the chosen manager with
// its install command. ok is false when no rule matched, which callers
// report as "no package manager available" rather than an error.
func Detect(ctx context.Context, runner command.Runner, dir string) (model.PackageManagerChoice, bool) {
	return detect(ctx, runner, dir, Rules())
}

func detect(ctx context.Context, runner command.Runner, dir string, rules []Rule) (model.PackageManagerChoice, bool) {
	p := &Probe{Dir: dir, ctx: ctx, runner: runner, seen: make(map[string]bool)}

	for _, r := range rules {
		m, ok := r.Match(p)
		if !ok {
			continue
		}
		choice := m.Choice(dir, r.Name)
		logger.Log.Debug("package manager detected",
			zap.String("manager", choice.Name),
			zap.String("rule", r.Name),
			zap.String("command", choice.String()))
		return choice, true
	}

	logger.Log.Debug("no package manager detected", zap.String("dir", dir))
	return model.PackageManagerChoice{}, false
}

// matchManifestField honours the packageManager declaration in
// package.json. An unreadable manifest, an unknown manager name or a
// manager that is not installed all fall through to the lock-file rules.
func matchManifestField(p *Probe) (Manager, bool) {
	manifest, err := LoadManifest(p.Dir)
	if err != nil {
		// Best effort: a broken manifest is the install step's problem.
		logger.Log.Debug("ignoring unreadable manifest", zap.Error(err))
		return Manager{}, false
	}

	name, version, ok := manifest.DeclaredManager()
	if !ok {
		return Manager{}, false
	}

	m, known := Lookup(name)
	if !known {
		logger.Log.Debug("ignoring unsupported packageManager", zap.String("name", name))
		return Manager{}, false
	}
	if !p.Available(m.Name) {
		return Manager{}, false
	}

	logger.Log.Debug("packageManager field", zap.String("name", name), zap.String("version", version))
	return m, true
}

func matchLockFile(m Manager) func(p *Probe) (Manager, bool) {
	return func(p *Probe) (Manager, bool) {
		if _, ok := m.LockFileIn(p.Dir); !ok {
			return Manager{}, false
		}
		return m, p.Available(m.Name)
	}
}

func matchFallback(p *Probe) (Manager, bool) {
	return npm, p.Available(npm.Name)
}
