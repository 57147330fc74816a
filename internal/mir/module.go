package mir

// Module groups the bodies lowered from one compilation unit.
type Module struct {
	Name   string
	Bodies []*Body
}

func (m *Module) Lookup(name string) *Body {
	if m == nil {
		return nil
	}
	for _, b := range m.Bodies {
		if b != nil && b.Name == name {
			return b
		}
	}
	return nil
}
