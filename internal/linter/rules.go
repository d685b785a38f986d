package linter

import (
	"fmt"
	"regexp"
	"strings"
)

// TimestamperPath is the build wrapper that timestamps console output.
const TimestamperPath = "./buildWrappers/hudson.plugins.timestamper.TimestamperBuildWrapper"

// EnsureTimestamps requires jobs to wrap their build with the timestamper.
type EnsureTimestamps struct {
	JobLinter
}

// Description implements Linter.
func (EnsureTimestamps) Description() string {
	return "checking for timestamps"
}

// DefaultConfig implements Linter. The rule has no options.
func (EnsureTimestamps) DefaultConfig() Defaults {
	return nil
}

// ActualCheck passes when the timestamper wrapper is present.
func (EnsureTimestamps) ActualCheck(ctx *Context) (Result, string) {
	if _, ok := ctx.Tree().Find(TimestamperPath); ok {
		return Pass, ""
	}
	return Fail, ""
}

// CheckForEmptyShell requires every shell build step to contain a script.
type CheckForEmptyShell struct {
	JobLinter
}

// Description implements Linter.
func (CheckForEmptyShell) Description() string {
	return "checking shell builder shell scripts are not empty"
}

// DefaultConfig implements Linter. The rule has no options.
func (CheckForEmptyShell) DefaultConfig() Defaults {
	return nil
}

// ActualCheck implements Linter.
func (l CheckForEmptyShell) ActualCheck(ctx *Context) (Result, string) {
	return CheckShellSteps(ctx, l.shellCheck)
}

func (CheckForEmptyShell) shellCheck(_ *Context, script string) (Result, string) {
	if script == "" {
		return Fail, ""
	}
	return Pass, ""
}

// CheckShebang options.
const (
	OptionAllowDefaultShebang  = "allow_default_shebang"
	OptionRequiredShellOptions = "required_shell_options"
)

var (
	shellShebang = regexp.MustCompile(`^#!/bin/[a-z]*sh`)
	optionFlag   = regexp.MustCompile(`^-[a-z]+`)
)

// CheckShebang requires shell steps with a shell shebang to enable the
// configured set of shell options, -eux by default. Steps without a shebang
// fall back to Jenkins' default shell and are governed by
// allow_default_shebang; steps with a non-shell interpreter are skipped.
type CheckShebang struct {
	JobLinter
}

// Description implements Linter.
func (CheckShebang) Description() string {
	return "checking shebang of shell builders"
}

// DefaultConfig implements Linter.
func (CheckShebang) DefaultConfig() Defaults {
	return Defaults{
		OptionAllowDefaultShebang:  true,
		OptionRequiredShellOptions: "eux",
	}
}

// ActualCheck implements Linter.
func (l CheckShebang) ActualCheck(ctx *Context) (Result, string) {
	return CheckShellSteps(ctx, l.shellCheck)
}

func (CheckShebang) shellCheck(ctx *Context, script string) (Result, string) {
	if script == "" {
		return Skip, ""
	}

	line := firstLine(script)
	if !strings.HasPrefix(line, "#!") {
		if ctx.Config().Bool(OptionAllowDefaultShebang) {
			return Skip, ""
		}
		return Fail, "Shebang is Jenkins' default"
	}
	if !shellShebang.MatchString(line) {
		return Skip, ""
	}

	required := ctx.Config().StringSet(OptionRequiredShellOptions)
	if len(required) == 0 {
		return Pass, ""
	}

	parts := strings.Fields(line)
	if len(parts) < 2 || !optionFlag.MatchString(parts[1]) {
		return Fail, fmt.Sprintf("Shebang is %s", line)
	}
	if !required.IsSubsetOf(NewCharSet(parts[1][1:])) {
		return Fail, fmt.Sprintf("Shebang is %s", line)
	}
	return Pass, ""
}

// firstLine returns script up to the first line break.
func firstLine(script string) string {
	if i := strings.IndexAny(script, "\r\n"); i >= 0 {
		return script[:i]
	}
	return script
}
