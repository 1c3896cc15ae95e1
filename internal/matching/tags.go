// Package matching selects game records by their tags.
package matching

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// TagOperator represents comparison operators for tag matching.
type TagOperator int

const (
	OpEqual TagOperator = iota
	OpNotEqual
	OpLessThan
	OpLessOrEqual
	OpGreaterThan
	OpGreaterOrEqual
	OpRegex
)

// PlayerTag is the pseudo-tag matching either player's name.
const PlayerTag = "Player"

// TagCriterion is one test on one tag.
type TagCriterion struct {
	TagName  string
	Value    string
	Operator TagOperator
	Regex    *regexp.Regexp // compiled for OpRegex
}

// TagMatcher selects records whose tags meet its criteria.
type TagMatcher struct {
	criteria []*TagCriterion
	matchAll bool // true = AND all criteria, false = OR
}

// NewTagMatcher creates a matcher that requires every criterion.
func NewTagMatcher() *TagMatcher {
	return &TagMatcher{matchAll: true}
}

// SetMatchAll sets whether all criteria must match (AND) or any (OR).
func (tm *TagMatcher) SetMatchAll(all bool) {
	tm.matchAll = all
}

// AddCriterion adds a tag matching criterion.
func (tm *TagMatcher) AddCriterion(tagName, value string, op TagOperator) error {
	c := &TagCriterion{TagName: tagName, Value: value, Operator: op}
	if op == OpRegex {
		re, err := regexp.Compile(value)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "tag pattern %q: %v", value, err)
		}
		c.Regex = re
	}
	tm.criteria = append(tm.criteria, c)
	return nil
}

// operators in the order they must be tried: two-character forms first.
var operators = []struct {
	text string
	op   TagOperator
}{
	{"<=", OpLessOrEqual},
	{">=", OpGreaterOrEqual},
	{"!=", OpNotEqual},
	{"<", OpLessThan},
	{">", OpGreaterThan},
	{"=", OpEqual},
	{"~", OpRegex},
}

// ParseCriterion parses a criterion such as `Variant = gardner`,
// `Round >= 3` or `White ~ "level [45]"`.
func (tm *TagMatcher) ParseCriterion(line string) error {
	line = strings.TrimSpace(line)
	nameEnd := strings.IndexAny(line, " \t<>=!~")
	if nameEnd <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "tag criterion %q", line)
	}
	name := line[:nameEnd]
	rest := strings.TrimSpace(line[nameEnd:])

	for _, o := range operators {
		if !strings.HasPrefix(rest, o.text) {
			continue
		}
		value := strings.TrimSpace(rest[len(o.text):])
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		return tm.AddCriterion(name, value, o.op)
	}
	return errors.Wrapf(errors.ErrInvalidConfig, "tag criterion %q has no operator", line)
}

// Match reports whether tags meet the criteria. A nil matcher, or one
// without criteria, matches everything.
func (tm *TagMatcher) Match(tags map[string]string) bool {
	if tm == nil || len(tm.criteria) == 0 {
		return true
	}
	for _, c := range tm.criteria {
		if matchCriterion(tags, c) != tm.matchAll {
			return !tm.matchAll
		}
	}
	return tm.matchAll
}

func matchCriterion(tags map[string]string, c *TagCriterion) bool {
	if c.TagName == PlayerTag {
		return matchValue(tags["White"], c) || matchValue(tags["Black"], c)
	}
	value, ok := tags[c.TagName]
	if !ok {
		// Only != matches a missing tag.
		return c.Operator == OpNotEqual
	}
	return matchValue(value, c)
}

func matchValue(value string, c *TagCriterion) bool {
	switch c.Operator {
	case OpEqual:
		return strings.EqualFold(value, c.Value)
	case OpNotEqual:
		return !strings.EqualFold(value, c.Value)
	case OpRegex:
		return c.Regex != nil && c.Regex.MatchString(value)
	}

	order := compareValues(value, c.Value)
	switch c.Operator {
	case OpLessThan:
		return order < 0
	case OpLessOrEqual:
		return order <= 0
	case OpGreaterThan:
		return order > 0
	case OpGreaterOrEqual:
		return order >= 0
	}
	return false
}

// compareValues orders two tag values numerically when both are numbers,
// else case-insensitively as text.
func compareValues(a, b string) int {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CriteriaCount returns the number of criteria.
func (tm *TagMatcher) CriteriaCount() int {
	return len(tm.criteria)
}
