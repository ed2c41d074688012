package notebook

import (
	"fmt"
	"strings"
)

// LocatorKind enumerates the strategies a Locator can use to find an element.
type LocatorKind int

const (
	// KindText matches elements of a tag whose normalized text contains a
	// value. ASCII letters match case-insensitively.
	KindText LocatorKind = iota
	// KindAnyText matches any element owning a text node that contains a
	// value, with the same case folding as KindText.
	KindAnyText
	// KindAttr matches an exact attribute value.
	KindAttr
	// KindAttrContains matches an attribute substring.
	KindAttrContains
	// KindClass matches a class token.
	KindClass
	// KindTag matches every element of a tag.
	KindTag
)

// Locator is one concrete way to find a page element. Every locator compiles
// to a single XPath 1.0 expression so the browser side needs one query path.
type Locator struct {
	Kind     LocatorKind
	Tag      string
	Attr     string
	Value    string
	PickLast bool
}

func Text(tag, text string) Locator {
	return Locator{Kind: KindText, Tag: tag, Value: text}
}

func AnyText(text string) Locator {
	return Locator{Kind: KindAnyText, Value: text}
}

func Attr(tag, attr, value string) Locator {
	return Locator{Kind: KindAttr, Tag: tag, Attr: attr, Value: value}
}

func AttrContains(tag, attr, fragment string) Locator {
	return Locator{Kind: KindAttrContains, Tag: tag, Attr: attr, Value: fragment}
}

func Class(tag, class string) Locator {
	return Locator{Kind: KindClass, Tag: tag, Value: class}
}

func Tag(tag string) Locator {
	return Locator{Kind: KindTag, Tag: tag}
}

// Last selects the last matching element instead of the first.
func (l Locator) Last() Locator {
	l.PickLast = true
	return l
}

// XPath renders the locator as an expression selecting at most one node.
func (l Locator) XPath() string {
	tag := l.Tag
	if tag == "" {
		tag = "*"
	}

	var expr string
	switch l.Kind {
	case KindText:
		expr = fmt.Sprintf("//%s[contains(%s, %s)]", tag, foldedText, xpathLiteral(asciiLower(l.Value)))
	case KindAnyText:
		expr = fmt.Sprintf("//%s[text()[contains(%s, %s)]]", tag, foldedText, xpathLiteral(asciiLower(l.Value)))
	case KindAttr:
		expr = fmt.Sprintf("//%s[@%s=%s]", tag, l.Attr, xpathLiteral(l.Value))
	case KindAttrContains:
		expr = fmt.Sprintf("//%s[contains(@%s, %s)]", tag, l.Attr, xpathLiteral(l.Value))
	case KindClass:
		expr = fmt.Sprintf("//%s[contains(concat(' ', normalize-space(@class), ' '), %s)]", tag, xpathLiteral(" "+l.Value+" "))
	default:
		expr = "//" + tag
	}

	if l.PickLast {
		return "(" + expr + ")[last()]"
	}
	return "(" + expr + ")[1]"
}

// String is a short human-readable form for logs.
func (l Locator) String() string {
	tag := l.Tag
	if tag == "" {
		tag = "*"
	}
	var s string
	switch l.Kind {
	case KindText:
		s = fmt.Sprintf("%s:text(%q)", tag, l.Value)
	case KindAnyText:
		s = fmt.Sprintf(":text(%q)", l.Value)
	case KindAttr:
		s = fmt.Sprintf("%s[%s=%q]", tag, l.Attr, l.Value)
	case KindAttrContains:
		s = fmt.Sprintf("%s[%s*=%q]", tag, l.Attr, l.Value)
	case KindClass:
		s = tag + "." + l.Value
	default:
		s = tag
	}
	if l.PickLast {
		s += ":last"
	}
	return s
}

const (
	upperASCII = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerASCII = "abcdefghijklmnopqrstuvwxyz"
)

// foldedText is the context node's normalized text with ASCII letters
// lowered. XPath 1.0 has no lower-case(), and translate() maps only the
// characters it is given, so the needle must be folded the same way.
var foldedText = fmt.Sprintf("translate(normalize-space(.), %q, %q)", upperASCII, lowerASCII)

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value holding both quote kinds is assembled with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, '"', `)
		}
		b.WriteString(`"` + p + `"`)
	}
	b.WriteString(")")
	return b.String()
}
