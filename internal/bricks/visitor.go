package bricks

// Visitor receives every element and class of a document. Implementations
// may modify the pointed-to values; Walk never touches anything else.
type Visitor interface {
	VisitElement(index int, el *Element) error
	VisitClass(index int, cls *ClassDefinition) error
}

// Walk visits content in render order, then the class table in insertion order.
func Walk(doc *Document, v Visitor) error {
	for i := range doc.Content {
		if err := v.VisitElement(i, &doc.Content[i]); err != nil {
			return err
		}
	}
	for i := range doc.GlobalClasses {
		if err := v.VisitClass(i, &doc.GlobalClasses[i]); err != nil {
			return err
		}
	}
	return nil
}

// VisitorFuncs adapts plain functions to a Visitor. Nil functions are skipped.
type VisitorFuncs struct {
	Element func(index int, el *Element) error
	Class   func(index int, cls *ClassDefinition) error
}

func (f VisitorFuncs) VisitElement(index int, el *Element) error {
	if f.Element == nil {
		return nil
	}
	return f.Element(index, el)
}

func (f VisitorFuncs) VisitClass(index int, cls *ClassDefinition) error {
	if f.Class == nil {
		return nil
	}
	return f.Class(index, cls)
}

// ElementIDs returns the set of element ids in the document.
func (d *Document) ElementIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Content))
	for _, el := range d.Content {
		if el.ID != "" {
			ids[el.ID] = struct{}{}
		}
	}
	return ids
}

// ClassIDs returns the set of global class ids in the document.
func (d *Document) ClassIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.GlobalClasses))
	for _, cls := range d.GlobalClasses {
		if cls.ID != "" {
			ids[cls.ID] = struct{}{}
		}
	}
	return ids
}

// Reference describes a link from an element to an id that does not resolve.
type Reference struct {
	Element string
	Field   string
	Target  string
}

// DanglingClassRefs lists _cssGlobalClasses entries with no matching class.
func (d *Document) DanglingClassRefs() []Reference {
	classes := d.ClassIDs()
	var refs []Reference
	for _, el := range d.Content {
		for _, id := range el.Settings.GlobalClasses() {
			if _, ok := classes[id]; !ok {
				refs = append(refs, Reference{Element: el.ID, Field: KeyGlobalClasses, Target: id})
			}
		}
	}
	return refs
}

// MissingElementRefs lists parent and children links pointing outside the document.
func (d *Document) MissingElementRefs() []Reference {
	elements := d.ElementIDs()
	var refs []Reference
	for i := range d.Content {
		el := &d.Content[i]
		if parent, ok := el.ParentID(); ok {
			if _, found := elements[parent]; !found {
				refs = append(refs, Reference{Element: el.ID, Field: "parent", Target: parent})
			}
		}
		for _, child := range el.Children {
			if _, found := elements[child]; !found {
				refs = append(refs, Reference{Element: el.ID, Field: "children", Target: child})
			}
		}
	}
	return refs
}
