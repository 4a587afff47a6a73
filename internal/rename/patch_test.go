package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchClassRules(t *testing.T) {
	names := map[string]string{"feature-17": "brixies-hero"}
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{"bem selector", ".feature-17__arrow-left { color: red }", ".brixies-hero__arrow-left { color: red }"},
		{"simple selector", ".feature-17 > .x, .feature-17:hover {}", ".brixies-hero > .x, .brixies-hero:hover {}"},
		{"selector at end", "document.querySelector('.feature-17", "document.querySelector('.brixies-hero"},
		{"longer class untouched", ".feature-170 {}", ".feature-170 {}"},
		{"hyphenated sibling untouched", ".feature-17-wrapper {}", ".feature-17-wrapper {}"},
		{"compound selector", "div.feature-17.active {}", "div.brixies-hero.active {}"},
		{"attribute selector", `[class*="feature-17"] { margin: 0 }`, `[class*="brixies-hero"] { margin: 0 }`},
		{"attribute selector single quote", `[class^='feature-17']`, `[class^='brixies-hero']`},
		{"html class attribute", `<div class="a feature-17  b">`, `<div class="a brixies-hero  b">`},
		{"html class bem token", `<span class='feature-17__icon'>`, `<span class='brixies-hero__icon'>`},
		{"quoted literal", `el.classList.add('feature-17'); x = "feature-17";`, `el.classList.add('brixies-hero'); x = "brixies-hero";`},
		{"quoted literal inside identifier", `'feature-17-extra'`, `'feature-17-extra'`},
		{"card selector", ".card-feature-17 { }", ".card-brixies-hero { }"},
		{"card bem selector", ".card-feature-17__body { }", ".card-brixies-hero__body { }"},
		{"data class attribute untouched", `<div data-class="x feature-17" aria-class='feature-17__icon'>`, `<div data-class="x feature-17" aria-class='feature-17__icon'>`},
		{"jsx className", `<div className="feature-17 x">`, `<div className="brixies-hero x">`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Patch(tc.snippet, names, nil))
		})
	}
}

func TestPatchCardPrefixedClassAttribute(t *testing.T) {
	got := Patch(`class="card-feature-17 active"`, map[string]string{"feature-17": "shop-cta"}, nil)
	assert.Equal(t, `class="card-shop-cta active"`, got)
}

func TestPatchElementIDs(t *testing.T) {
	ids := map[string]string{"abcxyz": "qwerty"}
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{"id selector", "#abcxyz { top: 0 }", "#qwerty { top: 0 }"},
		{"dom id selector", "#brxe-abcxyz .inner {}", "#brxe-qwerty .inner {}"},
		{"longer id untouched", "#abcxyz1 {}", "#abcxyz1 {}"},
		{"id attribute", `<a id="abcxyz">`, `<a id="qwerty">`},
		{"id attribute single quote", `<a id='brxe-abcxyz'>`, `<a id='brxe-qwerty'>`},
		{"data attribute untouched", `<a data-id="abcxyz">`, `<a data-id="abcxyz">`},
		{"quoted dom id", `document.getElementById('brxe-abcxyz')`, `document.getElementById('brxe-qwerty')`},
		{"quoted dom id double quote", `query("brxe-abcxyz")`, `query("brxe-qwerty")`},
		{"quoted longer dom id untouched", `'brxe-abcxyz1'`, `'brxe-abcxyz1'`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Patch(tc.snippet, nil, ids))
		})
	}
}

func TestPatchKeepsUnderscoreRootWhole(t *testing.T) {
	names := map[string]string{
		"feature-17":        "my_hero",
		"feature-17__title": "my_hero__title",
	}
	got := Patch(`.feature-17__arrow-left {} <i class="feature-17__icon feature-17">`, names, nil)
	assert.Equal(t, `.my_hero__arrow-left {} <i class="my_hero__icon my_hero">`, got)
	assert.Equal(t, `.card-my_hero__body {}`, Patch(`.card-feature-17__body {}`, names, nil))
}

func TestPatchDoesNotChainReplacements(t *testing.T) {
	// Swapping two names must not rewrite the first result a second time.
	names := map[string]string{"hero-a": "hero-b", "hero-b": "hero-a"}
	got := Patch(".hero-a {} .hero-b {}", names, nil)
	assert.Equal(t, ".hero-b {} .hero-a {}", got)

	names = map[string]string{"feature-17": "feature-18", "feature-18": "feature-19"}
	got = Patch(`.feature-17__x {} class="feature-18"`, names, nil)
	assert.Equal(t, `.feature-18__x {} class="feature-19"`, got)
}

func TestPatchIsOrderIndependent(t *testing.T) {
	names := map[string]string{
		"feature-17":        "shop",
		"feature-17__title": "shop__title",
		"card-feature-17":   "card-shop",
	}
	snippet := `.feature-17__title, .feature-17, .card-feature-17 {} <p class="feature-17__title card-feature-17">`
	want := `.shop__title, .shop, .card-shop {} <p class="shop__title card-shop">`
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, Patch(snippet, names, nil))
	}
}

func TestPatchWithReport(t *testing.T) {
	p := NewPatcher(map[string]string{"feature-17": "shop"}, map[string]string{"xyz123": "zzz999"})

	out, report := p.PatchWithReport(".feature-17 {} const feature-17Count = 1; #xyz123 {}")
	assert.Equal(t, ".shop {} const feature-17Count = 1; #zzz999 {}", out)
	assert.True(t, report.Changed())
	assert.Equal(t, 2, report.Replacements)
	assert.Empty(t, report.Residual)
	assert.Empty(t, report.HexLikeIDs)

	_, report = p.PatchWithReport("var name = feature-17; el.dataset.ref = xyz123;")
	assert.False(t, report.Changed())
	assert.Equal(t, []string{"feature-17", "xyz123"}, report.Residual)

	_, report = p.PatchWithReport("scrollTo(brxe-xyz123); const prefix = 'brxe-' + xyz123a;")
	assert.False(t, report.Changed())
	assert.Equal(t, []string{"xyz123"}, report.Residual)
	assert.Empty(t, p.Residual("nobrxe-xyz123 {}"))

	hex := NewPatcher(nil, map[string]string{"fa1b2c": "k2l3m4"})
	_, report = hex.PatchWithReport("#fa1b2c { color: #fa1b2c }")
	assert.Equal(t, []string{"fa1b2c"}, report.HexLikeIDs)

	out, report = p.PatchWithReport("")
	assert.Equal(t, "", out)
	assert.False(t, report.Changed())
}
