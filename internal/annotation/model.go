package annotation

// Model is a layer supporting atomic replacement of annotation sets.
// All methods are safe for concurrent use.
type Model struct {
	store
}

// NewModel creates an empty atomic layer.
func NewModel() *Model {
	return &Model{}
}

// AddAnnotation implements Layer.
func (m *Model) AddAnnotation(a Annotation) {
	m.apply(nil, []Annotation{a})
}

// RemoveAnnotation implements Layer.
func (m *Model) RemoveAnnotation(id string) {
	m.apply([]string{id}, nil)
}

// ReplaceAnnotations implements Replacer. Listeners observe a single
// change carrying both the removals and the additions.
func (m *Model) ReplaceAnnotations(remove []string, add []Annotation) {
	m.apply(remove, add)
}

// SimpleModel is a layer that only supports individual adds and removes.
type SimpleModel struct {
	store
}

// NewSimpleModel creates an empty add/remove-only layer.
func NewSimpleModel() *SimpleModel {
	return &SimpleModel{}
}

// AddAnnotation implements Layer.
func (m *SimpleModel) AddAnnotation(a Annotation) {
	m.apply(nil, []Annotation{a})
}

// RemoveAnnotation implements Layer.
func (m *SimpleModel) RemoveAnnotation(id string) {
	m.apply([]string{id}, nil)
}

var (
	_ Layer    = (*Model)(nil)
	_ Replacer = (*Model)(nil)
	_ Layer    = (*SimpleModel)(nil)
)
