// Package duplicate implements the duplication workflow: validate the
// source and destination, copy the working copy, reconcile it with git and
// re-install dependencies.
//
// Stages run strictly in order and each failure aborts the run:
//
//	validate → resolve destination → copy → reset → [clean]
//	→ [branch | pull request] → [install] → done
//
// Nothing is rolled back on failure; a failed run may leave a partially
// populated destination behind.
package duplicate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/copier"
	"github.com/shinji-kodama/gitdup/internal/git"
	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
	"github.com/shinji-kodama/gitdup/internal/pkgmgr"
)

// Duplicator runs duplication requests.
type Duplicator struct {
	runner   command.Runner
	resolver *Resolver
}

// New creates a Duplicator. A nil runner means an ExecRunner created per
// run, streaming output when the request is verbose.
func New(runner command.Runner) *Duplicator {
	return &Duplicator{runner: runner, resolver: NewResolver()}
}

// WithResolver replaces the default destination resolver.
func (d *Duplicator) WithResolver(r *Resolver) *Duplicator {
	d.resolver = r
	return d
}

// Run duplicates req.Source. Progress is reported to emit (which may be
// nil) in stage order, ending with EventDone on success. On failure the
// returned error is a *model.CLIError carrying the exit code of the
// failing stage, and no EventDone is emitted.
func (d *Duplicator) Run(ctx context.Context, req model.Request, emit model.EventFunc) (*model.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid request", err)
	}

	runner := d.runner
	if runner == nil {
		runner = command.NewExecRunner(req.Verbose)
	}
	g := git.NewManager(runner)

	// Step 1: Validate the source.
	source, err := filepath.Abs(req.Source)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve source path", err)
	}
	if err := validateSource(g, source); err != nil {
		return nil, err
	}
	// A symlinked source, such as a $PWD reached through a link, is copied
	// from its target. Result.Source keeps the path as given.
	realSource, err := filepath.EvalSymlinks(source)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitNotARepository, "failed to resolve source path", err)
	}

	// Step 2: Resolve and validate the destination.
	dest := req.Destination
	if dest == "" {
		dest = d.resolver.Resolve(source)
		logger.Log.Debug("resolved default destination", zap.String("destination", dest))
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve destination path", err)
	}
	if err := validateDestination(source, dest); err != nil {
		return nil, err
	}
	if err := prepareDestination(dest); err != nil {
		return nil, err
	}

	p := progress{emit: emit, dest: dest}
	packageBased := pkgmgr.IsPackageProject(realSource)

	// Step 3: Copy the tree.
	if err := copyTree(realSource, dest, packageBased, p); err != nil {
		return nil, err
	}

	// Step 4: Reconcile the copy with git.
	checkedOut, err := reconcile(ctx, g, dest, req, p)
	if err != nil {
		return nil, err
	}

	// Step 5: Re-install dependencies.
	manager := ""
	if packageBased {
		manager, err = install(ctx, runner, dest, req.Install, p)
		if err != nil {
			return nil, err
		}
	}

	p.send(model.Event{Kind: model.EventDone})

	return &model.Result{
		Source:         source,
		Destination:    dest,
		CheckedOut:     checkedOut,
		PackageManager: manager,
	}, nil
}

// copyTree copies source into dest, leaving out the git index and, for
// package-based projects, every node_modules directory.
func copyTree(source, dest string, packageBased bool, p progress) error {
	opts := copier.Options{ExcludePaths: copier.GitIndexPaths}

	p.send(model.Event{Kind: model.EventCopyStart})
	if packageBased {
		opts.ExcludeDirNames = []string{pkgmgr.DependencyDir}
		p.send(model.Event{Kind: model.EventSkipNotice, Reason: pkgmgr.DependencyDir})
	}

	stats, err := copier.CopyTree(source, dest, opts)
	if err != nil {
		return model.WrapCLIError(model.ExitCopyFailed, "failed to copy working directory", err)
	}
	logger.Log.Debug("copy finished",
		zap.Int("files", stats.Files),
		zap.Int("dirs", stats.Dirs),
		zap.Int("symlinks", stats.Symlinks),
		zap.Int("skipped", stats.Skipped),
		zap.Int64("bytes", stats.Bytes))

	if err := verifyCopy(dest); err != nil {
		return err
	}

	p.send(model.Event{Kind: model.EventCopyDone})
	return nil
}

// verifyCopy checks that dest received its own .git directory. Git
// searches parent directories for a repository, so running it in a copy
// without one would act on whatever repository encloses dest.
func verifyCopy(dest string) error {
	metadata := filepath.Join(dest, git.MetadataDir)
	info, err := os.Lstat(metadata)
	if err != nil {
		return model.WrapCLIError(model.ExitCopyFailed, "copy has no git directory", err)
	}
	if !info.IsDir() {
		return model.NewCLIError(model.ExitCopyFailed, fmt.Sprintf("copy has no git directory: %s is not a directory", metadata))
	}
	return nil
}

// progress stamps every event with the destination before emitting it.
type progress struct {
	emit model.EventFunc
	dest string
}

func (p progress) send(e model.Event) {
	e.Destination = p.dest
	p.emit.Emit(e)
}

// commandFailure wraps a failed external command as a CommandFailure.
func commandFailure(format string, err error, args ...any) error {
	return model.WrapCLIError(model.ExitCommandFailed, fmt.Sprintf(format, args...), err)
}
