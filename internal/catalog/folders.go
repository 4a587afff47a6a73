package catalog

import (
	"regexp"
	"strings"
)

// categoryFolders maps catalog categories to the data repository folders.
var categoryFolders = map[string]string{
	"header":           "headers",
	"hero":             "heroes",
	"feature":          "features",
	"portfolio":        "portfolios",
	"cta":              "ctas",
	"footer":           "footers",
	"testimonial":      "testimonials",
	"pricing":          "pricing",
	"contact":          "contacts",
	"about":            "abouts",
	"blog sections":    "blogs",
	"content":          "content",
	"gallery":          "galleries",
	"faq":              "faqs",
	"event":            "events",
	"logo":             "logos",
	"megamenu":         "megamenus",
	"offcanvas":        "offcanvas",
	"popup":            "popups",
	"single portfolio": "single-portfolios",
	"single post":      "single-posts",
	"single product":   "single-products",
	"product":          "products",
	"team":             "teams",
	"timeline":         "timelines",
	"banner section":   "banners",
	"cart page":        "cart-pages",
	"checkout page":    "checkout-pages",
	"coming soon":      "coming-soon",
	"dashboard page":   "dashboard-pages",
	"error page":       "error-pages",
	"link page":        "link-pages",
	"login page":       "login-pages",
	"category filter":  "category-filters",
}

// prefixedCategories name their files <category>-<name>.
var prefixedCategories = map[string]bool{
	"header": true, "hero": true, "feature": true, "portfolio": true, "cta": true,
	"footer": true, "testimonial": true, "pricing": true, "contact": true, "about": true,
}

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	notFileChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// CategoryFolder returns the folder that holds a category's sections.
func CategoryFolder(category string) string {
	lower := strings.ToLower(category)
	if folder, ok := categoryFolders[lower]; ok {
		return folder
	}
	return spaceRun.ReplaceAllString(lower, "-")
}

// SectionFileName returns the file name (without extension) of a section.
func SectionFileName(name, category string) string {
	file := strings.ToLower(name)
	file = spaceRun.ReplaceAllString(file, "-")
	file = notFileChar.ReplaceAllString(file, "")

	lower := strings.ToLower(category)
	if prefixedCategories[lower] && !strings.HasPrefix(file, lower+"-") {
		file = lower + "-" + file
	}
	return file
}

// GuessPath builds the conventional relative path of a section document.
func GuessPath(category, name string) string {
	return CategoryFolder(category) + "/" + SectionFileName(name, category) + ".json"
}
