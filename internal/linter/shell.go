package linter

// ShellCommandPath selects the script of every shell build step.
const ShellCommandPath = "./builders/hudson.tasks.Shell/command"

// ShellCheckFunc judges a single shell build step. script is empty when the
// step has no script text.
type ShellCheckFunc func(ctx *Context, script string) (Result, string)

// CheckShellSteps applies check to every shell build step in document order.
//
// A document without shell steps is skipped. The first failing step ends the
// walk and its result is returned; later steps are not evaluated, so only
// the first violation is reported. Otherwise the aggregate is Pass, even if
// every step individually skipped.
func CheckShellSteps(ctx *Context, check ShellCheckFunc) (Result, string) {
	steps := ctx.Tree().FindAll(ShellCommandPath)
	if len(steps) == 0 {
		return Skip, ""
	}

	for _, step := range steps {
		script, _ := step.Text()
		if result, text := check(ctx, script); result == Fail {
			return result, text
		}
	}
	return Pass, ""
}
