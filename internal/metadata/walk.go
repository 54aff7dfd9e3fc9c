package metadata

// Event tells a visitor where in the traversal a notification fires.
type Event int

const (
	// EventVisit is the single notification for leaf declarations.
	EventVisit Event = iota
	// EventEnter fires for a class before any of its members.
	EventEnter
	// EventExit fires for a class after all of its members.
	EventExit
)

// Visitor receives traversal notifications. Returning a non-nil error
// aborts the walk and surfaces the error to the caller unchanged.
type Visitor interface {
	Visit(decl Decl, event Event) error
}

// Walk traverses the declaration forest in document order. Classes fire one
// Enter and one matching Exit notification with their members nested in
// between, leaves fire exactly one Visit notification and unknown kinds are
// passed through without notification. The tree is never mutated.
func Walk(decls []Decl, visitor Visitor) error {
	for _, decl := range decls {
		switch node := decl.(type) {
		case *Class:
			if err := visitor.Visit(node, EventEnter); err != nil {
				return err
			}
			if err := Walk(node.Members(), visitor); err != nil {
				return err
			}
			if err := visitor.Visit(node, EventExit); err != nil {
				return err
			}
		case *Field, *Constructor, *Method:
			if err := visitor.Visit(decl, EventVisit); err != nil {
				return err
			}
		default:
			// Partially understood APIs degrade gracefully, an
			// unsupported kind is not an error.
			continue
		}
	}
	return nil
}
