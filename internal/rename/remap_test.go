package rename

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brixies/brix-cli/internal/bricks"
)

const remapFixture = `{
  "content": [
    {"id": "sec001", "name": "section", "parent": 0, "children": ["div001", "ext001"], "settings": {"_cssGlobalClasses": ["cls001"], "_padding": {"top": "4rem"}}},
    {"id": "div001", "name": "div", "parent": "sec001", "children": [], "settings": {"_cssGlobalClasses": ["cls002", "unknown"]}, "themeStyles": []},
    {"id": "lone01", "name": "div", "parent": "outside", "children": []}
  ],
  "globalClasses": [
    {"id": "cls001", "name": "feature-17", "settings": {"_typography": {"font-size": "2rem"}}},
    {"id": "cls002", "name": "feature-17__title"}
  ]
}`

func TestRemapRewritesReferencesAndKeepsTheRest(t *testing.T) {
	doc, err := bricks.Parse([]byte(remapFixture))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var before bytes.Buffer
	if err := bricks.Encode(&before, doc); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	m := NewMapping()
	m.ElementIDs = map[string]string{"sec001": "aaaaa1", "div001": "aaaaa2", "lone01": "aaaaa3"}
	m.ClassIDs = map[string]string{"cls001": "ccccc1", "cls002": "ccccc2"}
	m.ClassNames = map[string]string{"feature-17": "shop", "feature-17__title": "shop__title"}

	out, err := Remap(doc, m)
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}

	type view struct {
		ID       string
		Parent   string
		Children []string
		Classes  []string
	}
	var got []view
	for i := range out.Content {
		el := &out.Content[i]
		parent, _ := el.ParentID()
		got = append(got, view{ID: el.ID, Parent: parent, Children: el.Children, Classes: el.Settings.GlobalClasses()})
	}
	want := []view{
		{ID: "aaaaa1", Children: []string{"aaaaa2", "ext001"}, Classes: []string{"ccccc1"}},
		{ID: "aaaaa2", Parent: "aaaaa1", Children: []string{}, Classes: []string{"ccccc2", "unknown"}},
		{ID: "aaaaa3", Parent: "outside", Children: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected elements (-want +got):\n%s", diff)
	}

	if out.GlobalClasses[0].ID != "ccccc1" || out.GlobalClasses[0].Name != "shop" {
		t.Fatalf("unexpected class: %+v", out.GlobalClasses[0])
	}
	if _, ok := out.GlobalClasses[0].Settings.Get("_typography"); !ok {
		t.Fatalf("class settings should be carried over")
	}
	if _, ok := out.Content[0].Settings.Get("_padding"); !ok {
		t.Fatalf("element settings should be carried over")
	}
	if _, ok := out.Content[1].Field("themeStyles"); !ok {
		t.Fatalf("unknown element keys should be carried over")
	}
	if string(out.Content[0].Parent) != "0" {
		t.Fatalf("root parent marker should stay untouched, got %s", out.Content[0].Parent)
	}

	var after bytes.Buffer
	if err := bricks.Encode(&after, doc); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if diff := cmp.Diff(before.String(), after.String()); diff != "" {
		t.Fatalf("remap mutated its input:\n%s", diff)
	}
}

func TestRemapLeavesNoDanglingClassReferences(t *testing.T) {
	doc, err := bricks.Parse([]byte(`{
		"content": [
			{"id": "a", "children": ["b"], "settings": {"_cssGlobalClasses": ["c1", "c2"]}},
			{"id": "b", "parent": "a", "children": [], "settings": {"_cssGlobalClasses": ["c2"]}}
		],
		"globalClasses": [{"id": "c1", "name": "hero"}, {"id": "c2", "name": "hero__inner"}]
	}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m := NewMapping()
	m.ClassIDs = map[string]string{"c1": "n1", "c2": "n2"}
	out, err := Remap(doc, m)
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	if refs := out.DanglingClassRefs(); len(refs) != 0 {
		t.Fatalf("expected no dangling references, got %+v", refs)
	}
	if refs := out.MissingElementRefs(); len(refs) != 0 {
		t.Fatalf("unmapped element ids must stay consistent, got %+v", refs)
	}
}
