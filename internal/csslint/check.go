package csslint

import (
	"bytes"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/cssbuild"
)

// LinterName is reported as Issue.FromLinter.
const LinterName = cssbuild.LinterName

// token is a significant lexer token with its byte offset.
type token struct {
	tt     css.TokenType
	text   string
	offset int
}

// block is an open { ... } scope.
type block struct {
	offset   int
	ruleset  bool
	children int
	props    map[string]bool
}

// checker keeps state while walking the token stream of one file.
type checker struct {
	content  []byte
	filename string
	rules    Rules
	issues   []issueAt

	stack   []*block
	prelude []token
	interp  int // open #{ } interpolations
}

type issueAt struct {
	offset int
	issue  cssbuild.Issue
}

// Check lints stylesheet content. Issues are ordered by position.
func Check(content []byte, filename string, rules Rules) []cssbuild.Issue {
	c := &checker{content: content, filename: filename, rules: rules}
	c.walk()

	sort.SliceStable(c.issues, func(i, j int) bool {
		return c.issues[i].offset < c.issues[j].offset
	})
	issues := make([]cssbuild.Issue, len(c.issues))
	for i, ia := range c.issues {
		line, col, _ := parse.Position(bytes.NewReader(content), ia.offset)
		ia.issue.Pos = cssbuild.IssuePos{Filename: filename, Line: line, Column: col}
		issues[i] = ia.issue
	}
	return issues
}

func (c *checker) walk() {
	lexer := css.NewLexer(parse.NewInputBytes(c.content))

	offset := 0
	lineComment := false
	var prev token
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		start := offset
		offset += len(text)
		cur := token{tt: tt, text: string(text), offset: start}

		// SCSS // comments run to the end of the line
		if lineComment {
			if bytes.ContainsAny(text, "\n\r\f") {
				lineComment = false
			}
			continue
		}
		if isDelim(cur, "/") && isDelim(prev, "/") && prev.offset+1 == start {
			lineComment = true
			c.prelude = c.prelude[:len(c.prelude)-1]
			prev = token{}
			continue
		}

		switch tt {
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.LeftBraceToken:
			if isDelim(prev, "#") && prev.offset+1 == start {
				c.interp++
				c.prelude = append(c.prelude, cur)
			} else {
				c.open(start)
			}
		case css.RightBraceToken:
			if c.interp > 0 {
				c.interp--
				c.prelude = append(c.prelude, cur)
			} else {
				c.close(start)
			}
		case css.SemicolonToken:
			c.statement()
		case css.IdentToken:
			if isDelim(prev, "!") && strings.EqualFold(cur.text, "important") {
				c.report(RuleNoImportant, prev.offset, "!important should not be used")
			}
			c.prelude = append(c.prelude, cur)
		default:
			c.prelude = append(c.prelude, cur)
		}
		prev = cur
	}

	c.statement()
	for i := len(c.stack) - 1; i >= 0; i-- {
		c.report(RuleBraceBalance, c.stack[i].offset, "block is never closed")
	}
}

// open starts a block for the pending prelude.
func (c *checker) open(offset int) {
	b := &block{offset: offset, ruleset: true, props: make(map[string]bool)}
	if len(c.prelude) > 0 {
		b.offset = c.prelude[0].offset
		b.ruleset = c.prelude[0].tt != css.AtKeywordToken
	}

	if b.ruleset {
		for _, tok := range c.prelude {
			if tok.tt == css.HashToken {
				c.report(RuleNoIDs, tok.offset, "ID selector "+tok.text+" should not be used")
			}
		}
	}

	if parent := c.top(); parent != nil {
		parent.children++
	}
	c.stack = append(c.stack, b)
	c.prelude = c.prelude[:0]
}

// close ends the innermost block.
func (c *checker) close(offset int) {
	c.statement()
	b := c.top()
	if b == nil {
		c.report(RuleBraceBalance, offset, "unexpected }")
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	if b.ruleset && b.children == 0 {
		c.report(RuleNoEmptyRulesets, b.offset, "ruleset is empty")
	}
}

// statement consumes the prelude as a declaration or at-rule statement.
func (c *checker) statement() {
	if len(c.prelude) == 0 {
		return
	}
	defer func() { c.prelude = c.prelude[:0] }()

	b := c.top()
	if b == nil {
		return
	}
	b.children++

	if len(c.prelude) < 2 || c.prelude[1].tt != css.ColonToken {
		return
	}
	first := c.prelude[0]
	if first.tt != css.IdentToken && first.tt != css.CustomPropertyNameToken {
		return
	}
	name := first.text
	if first.tt == css.IdentToken {
		name = strings.ToLower(name)
	}
	if b.props[name] {
		c.report(RuleNoDuplicateProperties, first.offset, "duplicate property "+name)
		return
	}
	b.props[name] = true
}

func (c *checker) top() *block {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

func (c *checker) report(rule string, offset int, text string) {
	severity := c.rules[rule]
	if severity <= SeverityOff {
		return
	}
	level := cssbuild.SeverityWarning
	if severity >= SeverityError {
		level = cssbuild.SeverityError
	}
	c.issues = append(c.issues, issueAt{
		offset: offset,
		issue: cssbuild.Issue{
			FromLinter: LinterName,
			Rule:       rule,
			Text:       text,
			Severity:   level,
		},
	})
}

func isDelim(t token, s string) bool {
	return t.tt == css.DelimToken && t.text == s
}
