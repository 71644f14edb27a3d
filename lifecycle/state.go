package lifecycle

import "fmt"

// State is the save/undo status of the open document.
type State struct {
	// Path is where the document was last opened from or saved to.
	Path     string
	Dirty    bool
	Undoable bool
	Redoable bool
	// Loaded is false until the first new or open succeeds.
	Loaded bool
}

// HasPath reports whether a plain save can write without asking for a path.
func (s State) HasPath() bool { return s.Path != "" }

// Identity names the application in the title bar.
type Identity struct {
	Name     string
	Version  string
	Untitled string
}

// Title returns the window title for a document stored at path.
func (id Identity) Title(path string) string {
	name := path
	if name == "" {
		name = id.Untitled
	}
	if id.Version == "" {
		return fmt.Sprintf("%s - %s", id.Name, name)
	}
	return fmt.Sprintf("%s %s - %s", id.Name, id.Version, name)
}

// Availability is what the presentation layer needs after each transition.
type Availability struct {
	Save   bool
	SaveAs bool
	Undo   bool
	Redo   bool
	Title  string
}

// Derive computes which actions are enabled for s.
//
// Save follows the dirty flag alone. Without a path it still routes
// through save-as, so an edited untitled document can be saved with it.
func Derive(s State, id Identity) Availability {
	return Availability{
		Save:   s.Loaded && s.Dirty,
		SaveAs: s.Loaded,
		Undo:   s.Loaded && s.Undoable,
		Redo:   s.Loaded && s.Redoable,
		Title:  id.Title(s.Path),
	}
}
