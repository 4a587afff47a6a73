package rename

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/brixies/brix-cli/internal/bricks"
)

var (
	// ErrEmptyPrefix is returned when no replacement prefix was supplied.
	ErrEmptyPrefix = errors.New("class prefix must not be empty")
	// ErrInvalidPrefix is returned when the prefix is not a usable class name.
	ErrInvalidPrefix = errors.New("class prefix contains invalid characters")
)

// CardPrefix marks compound component classes such as card-feature-17.
const CardPrefix = "card-"

var (
	rootPattern   = regexp.MustCompile(`^[A-Za-z0-9-]+`)
	prefixPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// ExtractRoot returns the leading [A-Za-z0-9-]+ run of name, or name itself.
func ExtractRoot(name string) string {
	if root := rootPattern.FindString(name); root != "" {
		return root
	}
	return name
}

// ValidatePrefix checks a user supplied prefix.
func ValidatePrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return ErrEmptyPrefix
	}
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return nil
}

// RewriteRoot replaces the root of originalName with newPrefix and keeps the
// suffix. Names starting with card- keep that prefix and only the inner root
// is replaced.
func RewriteRoot(originalName, newPrefix string) (string, error) {
	if err := ValidatePrefix(newPrefix); err != nil {
		return "", err
	}
	if strings.HasPrefix(originalName, CardPrefix) {
		inner := strings.TrimPrefix(originalName, CardPrefix)
		return CardPrefix + newPrefix + suffixAfterRoot(inner), nil
	}
	return newPrefix + suffixAfterRoot(originalName), nil
}

func suffixAfterRoot(name string) string {
	root := rootPattern.FindString(name)
	return name[len(root):]
}

// RewriteWithin renames a class that belongs to a section whose root class is
// sectionRoot. Only the section root is replaced, so sibling classes such as
// feature-17-wrapper or feature-17--dark keep their distinguishing suffix;
// variant prefixes like card- are kept; unrelated classes come back
// unchanged. An empty sectionRoot falls back to RewriteRoot.
func RewriteWithin(originalName, sectionRoot, newPrefix string) (string, error) {
	if err := ValidatePrefix(newPrefix); err != nil {
		return "", err
	}
	if sectionRoot == "" {
		return RewriteRoot(originalName, newPrefix)
	}
	if rest, ok := cutRoot(originalName, sectionRoot); ok {
		return newPrefix + rest, nil
	}
	if variant, rest, ok := cutVariant(originalName, sectionRoot); ok {
		return variant + newPrefix + rest, nil
	}
	return originalName, nil
}

// cutRoot strips root from name when it is followed by a non-alphanumeric
// character or the end of the name.
func cutRoot(name, root string) (string, bool) {
	if !strings.HasPrefix(name, root) {
		return "", false
	}
	rest := name[len(root):]
	if rest != "" && isAlnum(rest[0]) {
		return "", false
	}
	return rest, true
}

// cutVariant matches <letters>-<root> and returns the "<letters>-" part.
func cutVariant(name, root string) (string, string, bool) {
	dash := strings.IndexByte(name, '-')
	if dash <= 0 {
		return "", "", false
	}
	for i := 0; i < dash; i++ {
		if !isLetter(name[i]) {
			return "", "", false
		}
	}
	rest, ok := cutRoot(name[dash+1:], root)
	if !ok {
		return "", "", false
	}
	return name[:dash+1], rest, true
}

// DetectRoot returns the root of the first global class, which the section
// library uses as the section's own root class.
func DetectRoot(doc *bricks.Document) string {
	for _, cls := range doc.GlobalClasses {
		if cls.Name != "" {
			return ExtractRoot(cls.Name)
		}
	}
	return ""
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

// isIdent reports whether c may continue a CSS identifier.
func isIdent(c byte) bool {
	return isAlnum(c) || c == '-' || c == '_'
}
