package linter

import (
	"github.com/harrison/jenkins-job-linter/internal/parser"
)

// JobRootTag is the root element tag of a Jenkins freestyle job document.
const JobRootTag = "project"

// Tree is the read-only view of a parsed job document that linters query.
// *parser.Document implements it.
type Tree interface {
	// RootTag returns the tag of the root element.
	RootTag() string
	// Find returns the first element matching a path relative to the root.
	Find(path string) (parser.Node, bool)
	// FindAll returns every element matching a path, in document order.
	FindAll(path string) []parser.Node
}

// Context bundles one document with the resolved settings of the linter
// being run against it. It is built immediately before a check and never
// modified afterwards.
type Context struct {
	tree   Tree
	config *Settings
}

// NewContext binds a tree and resolved settings. A nil config is replaced
// with empty settings.
func NewContext(tree Tree, config *Settings) *Context {
	if config == nil {
		config = EmptySettings("")
	}
	return &Context{tree: tree, config: config}
}

// Tree returns the document being linted.
func (c *Context) Tree() Tree {
	return c.tree
}

// Config returns the linter's resolved settings.
func (c *Context) Config() *Settings {
	return c.config
}

// Linter is one rule that can be evaluated against a job document.
type Linter interface {
	// Description is a short human-readable label used in reports.
	Description() string

	// RootTag is the root element tag of documents this rule applies to.
	RootTag() string

	// DefaultConfig declares the rule's options and their defaults.
	DefaultConfig() Defaults

	// ActualCheck evaluates the rule. It is only called by Check once the
	// root tag has matched. The explanation is empty when there is nothing
	// to add to the result.
	ActualCheck(ctx *Context) (Result, string)
}

// Check runs l against ctx. Documents whose root tag differs from the
// linter's are skipped without calling ActualCheck.
func Check(l Linter, ctx *Context) (Result, string) {
	if ctx.Tree().RootTag() != l.RootTag() {
		return Skip, ""
	}
	return l.ActualCheck(ctx)
}

// JobLinter is embedded by rules that apply to job documents.
type JobLinter struct{}

// RootTag returns JobRootTag.
func (JobLinter) RootTag() string {
	return JobRootTag
}
