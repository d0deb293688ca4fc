package duplicate

import (
	"context"

	"github.com/shinji-kodama/gitdup/internal/command"
	"github.com/shinji-kodama/gitdup/internal/model"
	"github.com/shinji-kodama/gitdup/internal/pkgmgr"
)

// install re-creates node_modules in dest with the detected package
// manager. A disabled install or a missing manager is reported as a skip,
// not an error; a failing install command is fatal.
func install(ctx context.Context, runner command.Runner, dest string, enabled bool, p progress) (string, error) {
	if !enabled {
		p.send(model.Event{Kind: model.EventInstallSkip, Reason: model.SkipReasonInstallDisabled})
		return "", nil
	}

	choice, ok := pkgmgr.Detect(ctx, runner, dest)
	if !ok {
		p.send(model.Event{Kind: model.EventInstallSkip, Reason: model.SkipReasonNoPackageManager})
		return "", nil
	}

	p.send(model.Event{Kind: model.EventInstallStart, Manager: choice.Name})
	if _, err := runner.Run(ctx, dest, choice.Command, choice.Args...); err != nil {
		return "", commandFailure("failed to install dependencies with %s", err, choice.Name)
	}
	p.send(model.Event{Kind: model.EventInstallDone, Manager: choice.Name})

	return choice.Name, nil
}
