package rename

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BricksIDPrefix is the prefix the builder puts in front of element ids in the DOM.
const BricksIDPrefix = "brxe-"

// Replacements are parked behind private-use markers until the end of a
// patch, so a freshly written name can never be matched by a later rule.
const (
	holdOpen  = "\uE000"
	holdClose = "\uE001"
)

var (
	holdPattern      = regexp.MustCompile(holdOpen + `(\d+)` + holdClose)
	classAttrPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_-])class(?:Name)?\s*=\s*(?:"[^"]*"|'[^']*')`)
	tokenPattern     = regexp.MustCompile(`[^\s]+`)
	hexColorPattern  = regexp.MustCompile(`^(?:[0-9a-f]{3}|[0-9a-f]{4}|[0-9a-f]{6}|[0-9a-f]{8})$`)
)

type pair struct {
	old, new string
}

func sortedPairs(table map[string]string) []pair {
	pairs := make([]pair, 0, len(table))
	for old, new := range table {
		if old == "" || new == "" || old == new {
			continue
		}
		pairs = append(pairs, pair{old: old, new: new})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if len(pairs[i].old) != len(pairs[j].old) {
			return len(pairs[i].old) > len(pairs[j].old)
		}
		return pairs[i].old < pairs[j].old
	})
	return pairs
}

// Report describes what a patch did to one snippet.
type Report struct {
	Replacements int
	// Residual lists old class names and element ids that still appear as
	// standalone tokens after patching and could not be rewritten safely.
	Residual []string
	// HexLikeIDs lists rewritten element ids that also read as CSS colours.
	HexLikeIDs []string
}

// Changed reports whether anything was rewritten.
func (r Report) Changed() bool {
	return r.Replacements > 0
}

// Patcher rewrites class and id references inside custom CSS, JS and HTML.
type Patcher struct {
	classes  []pair
	elements []pair
	attr     map[string]*regexp.Regexp
	idAttr   map[string]*regexp.Regexp
}

// NewPatcher compiles the rules for one rename mapping.
func NewPatcher(classNames, elementIDs map[string]string) *Patcher {
	p := &Patcher{
		classes:  sortedPairs(classNames),
		elements: sortedPairs(elementIDs),
		attr:     map[string]*regexp.Regexp{},
		idAttr:   map[string]*regexp.Regexp{},
	}
	for _, c := range p.classes {
		for _, v := range withCardVariant(c) {
			p.attr[v.old] = regexp.MustCompile(`(\[\s*class\s*[*^$|~]?=\s*)(["']?)` + regexp.QuoteMeta(v.old) + `(["']?)(\s*\])`)
		}
	}
	for _, e := range p.elements {
		p.idAttr[e.old] = regexp.MustCompile(`(^|[^A-Za-z0-9_-])(id\s*=\s*)(["'])(` + BricksIDPrefix + `)?` + regexp.QuoteMeta(e.old) + `(["'])`)
	}
	return p
}

// Patch applies NewPatcher(classNames, elementIDs) to a single snippet.
func Patch(snippet string, classNames, elementIDs map[string]string) string {
	return NewPatcher(classNames, elementIDs).Patch(snippet)
}

// Patch rewrites snippet and returns the result.
func (p *Patcher) Patch(snippet string) string {
	out, _ := p.PatchWithReport(snippet)
	return out
}

// PatchWithReport rewrites snippet and describes the changes.
func (p *Patcher) PatchWithReport(snippet string) (string, Report) {
	if snippet == "" {
		return snippet, Report{}
	}
	rw := &rewriter{}
	text := snippet
	for _, c := range p.classes {
		text = p.patchClass(rw, text, c)
	}
	var hexLike []string
	for _, e := range p.elements {
		before := rw.count()
		text = p.patchElement(rw, text, e)
		if rw.count() > before && hexColorPattern.MatchString(e.old) {
			hexLike = append(hexLike, e.old)
		}
	}
	report := Report{
		Replacements: rw.count(),
		Residual:     p.residual(text),
		HexLikeIDs:   hexLike,
	}
	return rw.release(text), report
}

// Residual lists the old names and ids still referenced by snippet.
func (p *Patcher) Residual(snippet string) []string {
	return p.residual(snippet)
}

func (p *Patcher) patchClass(rw *rewriter, text string, c pair) string {
	variants := withCardVariant(c)

	// 1. simple selector
	for _, v := range variants {
		text = rw.selector(text, ".", v.old, v.new)
	}

	// 2. BEM element selector tracks the renamed root
	oldRoot, newRoot := renamedRoot(c)
	if oldRoot != "" && newRoot != "" && oldRoot != newRoot {
		for _, v := range withCardVariant(pair{old: oldRoot, new: newRoot}) {
			text = rw.literal(text, "."+v.old+"__", ".", v.new, "__")
		}
	}

	// 3. attribute selector
	for _, v := range variants {
		re := p.attr[v.old]
		repl := v.new
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			m := re.FindStringSubmatch(match)
			if m == nil || m[2] != m[3] {
				return match
			}
			return m[1] + m[2] + rw.hold(repl) + m[3] + m[4]
		})
	}

	// 4. HTML class attribute tokens
	text = classAttrPattern.ReplaceAllStringFunc(text, func(attr string) string {
		eq := strings.IndexByte(attr, '=')
		q := strings.IndexAny(attr[eq+1:], `"'`)
		if eq < 0 || q < 0 {
			return attr
		}
		q += eq + 1
		inner := attr[q+1 : len(attr)-1]
		inner = tokenPattern.ReplaceAllStringFunc(inner, func(tok string) string {
			return rw.token(tok, c, oldRoot, newRoot)
		})
		return attr[:q+1] + inner + attr[len(attr)-1:]
	})

	// 5. quoted string literal
	for _, v := range variants {
		for _, q := range []string{`'`, `"`, "`"} {
			text = rw.literal(text, q+v.old+q, q, v.new, q)
		}
	}
	return text
}

func (p *Patcher) patchElement(rw *rewriter, text string, e pair) string {
	// 6. id selector, plain and in the builder's DOM form
	text = rw.selector(text, "#"+BricksIDPrefix, e.old, e.new)
	text = rw.selector(text, "#", e.old, e.new)

	// 7. id attribute
	re := p.idAttr[e.old]
	text = re.ReplaceAllStringFunc(text, func(match string) string {
		m := re.FindStringSubmatch(match)
		if m == nil || m[3] != m[5] {
			return match
		}
		return m[1] + m[2] + m[3] + m[4] + rw.hold(e.new) + m[5]
	})

	// 8. quoted DOM id, e.g. getElementById('brxe-abcxyz')
	for _, q := range []string{`'`, `"`, "`"} {
		text = rw.literal(text, q+BricksIDPrefix+e.old+q, q+BricksIDPrefix, e.new, q)
	}
	return text
}

// renamedRoot returns the root of c.old and the name that replaces it. The
// new root is c.new minus the suffix c.old carries after its root, so a
// prefix such as my_hero is kept whole.
func renamedRoot(c pair) (string, string) {
	oldRoot := ExtractRoot(c.old)
	suffix := c.old[len(oldRoot):]
	if suffix == "" {
		return oldRoot, c.new
	}
	if newRoot, ok := strings.CutSuffix(c.new, suffix); ok && newRoot != "" {
		return oldRoot, newRoot
	}
	return oldRoot, ExtractRoot(c.new)
}

func (p *Patcher) residual(text string) []string {
	seen := map[string]bool{}
	var out []string
	check := func(name string, element bool) {
		if name == "" || seen[name] {
			return
		}
		if containsToken(text, name, element) {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, c := range p.classes {
		check(c.old, false)
	}
	for _, e := range p.elements {
		check(e.old, true)
	}
	sort.Strings(out)
	return out
}

// containsToken reports whether name occurs with a non-identifier character
// (or a BEM separator) on its right and a non-identifier character on its left.
// With element set, the builder's brxe- DOM prefix also counts as a left boundary.
func containsToken(text, name string, element bool) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], name)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(name)
		leftOK := start == 0 || !isIdent(text[start-1])
		if !leftOK && element && strings.HasSuffix(text[:start], BricksIDPrefix) {
			at := start - len(BricksIDPrefix)
			leftOK = at == 0 || !isIdent(text[at-1])
		}
		rightOK := end == len(text) || !isIdent(text[end]) ||
			strings.HasPrefix(text[end:], "__") || strings.HasPrefix(text[end:], "--")
		if leftOK && rightOK {
			return true
		}
		i = start + 1
	}
}

func withCardVariant(c pair) []pair {
	if strings.HasPrefix(c.old, CardPrefix) {
		return []pair{c}
	}
	newCard := CardPrefix + c.new
	if strings.HasPrefix(c.new, CardPrefix) {
		newCard = c.new
	}
	return []pair{c, {old: CardPrefix + c.old, new: newCard}}
}

type rewriter struct {
	slots []string
}

func (r *rewriter) hold(s string) string {
	r.slots = append(r.slots, s)
	return holdOpen + strconv.Itoa(len(r.slots)-1) + holdClose
}

func (r *rewriter) count() int {
	return len(r.slots)
}

func (r *rewriter) release(text string) string {
	return holdPattern.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(m[len(holdOpen) : len(m)-len(holdClose)])
		if err != nil || idx >= len(r.slots) {
			return m
		}
		return r.slots[idx]
	})
}

// selector replaces lead+old when the next character cannot continue an identifier.
func (r *rewriter) selector(text, lead, old, new string) string {
	needle := lead + old
	if !strings.Contains(text, needle) {
		return text
	}
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(text[i:], needle)
		if j < 0 {
			b.WriteString(text[i:])
			return b.String()
		}
		start := i + j
		end := start + len(needle)
		if end < len(text) && isIdent(text[end]) {
			b.WriteString(text[i : start+1])
			i = start + 1
			continue
		}
		b.WriteString(text[i:start])
		b.WriteString(lead)
		b.WriteString(r.hold(new))
		i = end
	}
}

// literal replaces every needle with open+new+close.
func (r *rewriter) literal(text, needle, open, new, close string) string {
	if !strings.Contains(text, needle) {
		return text
	}
	parts := strings.Split(text, needle)
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(open)
			b.WriteString(r.hold(new))
			b.WriteString(close)
		}
		b.WriteString(part)
	}
	return b.String()
}

// token rewrites one entry of an HTML class list.
func (r *rewriter) token(tok string, c pair, oldRoot, newRoot string) string {
	for _, v := range withCardVariant(c) {
		if tok == v.old {
			return r.hold(v.new)
		}
	}
	if oldRoot == "" || newRoot == "" || oldRoot == newRoot {
		return tok
	}
	for _, v := range withCardVariant(pair{old: oldRoot, new: newRoot}) {
		if rest, ok := strings.CutPrefix(tok, v.old+"__"); ok {
			return r.hold(v.new) + "__" + rest
		}
	}
	return tok
}
