// Package git provides the version-control operations mro needs, by shelling
// out to the git executable through an execx.Runner.
//
// A Client is bound to an explicit project root; no operation depends on the
// process working directory.
//
//	client := git.New(root, execx.Default, "git")
//	if err := client.RequireClean(ctx); err != nil {
//	    return err // wraps git.ErrDirtyTree
//	}
//	commits, err := client.CommitsSince(ctx, "v1.2.3", 10)
//
// Failed git invocations are returned as *output.ExitError of kind
// subprocess, with git's stderr as the message.
package git
