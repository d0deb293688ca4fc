package duplicate

import (
	"context"

	"go.uber.org/zap"

	"github.com/shinji-kodama/gitdup/internal/git"
	"github.com/shinji-kodama/gitdup/internal/logger"
	"github.com/shinji-kodama/gitdup/internal/model"
)

// reconcile runs the git stages inside dest and returns what was checked
// out, if anything. The source repository is never touched.
func reconcile(ctx context.Context, g *git.Manager, dest string, req model.Request, p progress) (string, error) {
	p.send(model.Event{Kind: model.EventResetStart})
	if err := g.ResetHard(ctx, dest); err != nil {
		return "", commandFailure("failed to reset tracked files", err)
	}
	p.send(model.Event{Kind: model.EventResetDone})

	if req.Clean {
		p.send(model.Event{Kind: model.EventCleanStart})
		if err := g.Clean(ctx, dest); err != nil {
			return "", commandFailure("failed to remove untracked files", err)
		}
		p.send(model.Event{Kind: model.EventCleanDone})
	}

	switch {
	case req.Branch != "":
		if req.PR > 0 {
			logger.Log.Debug("branch given, ignoring pull request", zap.Int("pr", req.PR))
		}
		return req.Branch, checkoutBranch(ctx, g, dest, req.Branch, p)

	case req.PR > 0:
		return checkoutPullRequest(ctx, g, dest, req.Remote, req.PR, p)
	}
	return "", nil
}

func checkoutBranch(ctx context.Context, g *git.Manager, dest, branch string, p progress) error {
	p.send(model.Event{Kind: model.EventBranchStart, Branch: branch})

	fetchRemotes(ctx, g, dest)

	if err := g.Checkout(ctx, dest, branch); err != nil {
		return commandFailure("failed to check out branch %q", err, branch)
	}

	p.send(model.Event{Kind: model.EventBranchDone, Branch: branch})
	return nil
}

// fetchRemotes refreshes remote-tracking refs before a branch checkout.
// It is best effort: a purely local repository has no remotes, and a
// branch that already exists locally can be checked out offline, so any
// failure here is logged and the checkout decides the outcome.
func fetchRemotes(ctx context.Context, g *git.Manager, dest string) {
	remotes, err := g.Remotes(ctx, dest)
	if err != nil {
		logger.Log.Warn("could not list remotes, skipping fetch", zap.Error(err))
		return
	}
	if len(remotes) == 0 {
		logger.Log.Debug("no remotes configured, skipping fetch")
		return
	}

	if err := g.FetchAll(ctx, dest); err != nil {
		logger.Log.Warn("fetch failed, using local refs", zap.Strings("remotes", remotes), zap.Error(err))
	}
}

func checkoutPullRequest(ctx context.Context, g *git.Manager, dest, remote string, pr int, p progress) (string, error) {
	local := model.PRBranchName(pr)
	p.send(model.Event{Kind: model.EventPRStart, PR: pr, Remote: remote, Branch: local})

	if _, err := g.FetchPullRequest(ctx, dest, remote, pr); err != nil {
		return "", commandFailure("failed to fetch pull request #%d from %s", err, pr, remote)
	}
	if err := g.Checkout(ctx, dest, local); err != nil {
		return "", commandFailure("failed to check out %s", err, local)
	}

	p.send(model.Event{Kind: model.EventPRDone, PR: pr, Remote: remote, Branch: local})
	return local, nil
}
