package navbar

// State tracks which root menu is open. At most one is open at a time.
// A State belongs to one client view and is not safe for concurrent use.
type State struct {
	open string
}

// Open shows the menu of rootID, replacing any other open menu.
func (s *State) Open(rootID string) {
	s.open = rootID
}

// Close hides the open menu, if any. Used for outside clicks and unmount.
func (s *State) Close() {
	s.open = ""
}

// Select closes the menu after a leaf was chosen and returns its path.
func (s *State) Select(path string) string {
	s.Close()
	return path
}

// OpenID returns the id of the open root, or "".
func (s *State) OpenID() string {
	return s.open
}

// IsOpen reports whether rootID's menu is the open one.
func (s *State) IsOpen(rootID string) bool {
	return rootID != "" && s.open == rootID
}
