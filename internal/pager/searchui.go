package pager

import "github.com/pagerctl/more/internal/search"

// searchUI is the line editor spec.md §6's key-binding table names
// without giving it a component: "Typing while search UI is active:
// append to the active search pattern; Backspace removes last
// character; Esc exits search UI." It owns only the in-progress text
// buffer and which color slot is being edited — the pattern itself
// always lives in the shared search.Table, updated on every keystroke
// so highlighting tracks the pattern live, the way an incremental
// search box in any pager behaves.
type searchUI struct {
	active     bool
	colorIndex int
	buf        []rune
}

// start begins (or resumes) editing the pattern bound to colorIndex,
// seeding buf from table's existing entry for that slot if one exists.
func (s *searchUI) start(colorIndex int, table *search.Table) {
	s.active = true
	s.colorIndex = colorIndex
	s.buf = s.buf[:0]
	for _, e := range table.Active() {
		if e.ColorIndex == colorIndex {
			s.buf = []rune(e.Pattern)
			break
		}
	}
}

// typeRune appends r to the in-progress pattern.
func (s *searchUI) typeRune(r rune) {
	s.buf = append(s.buf, r)
}

// backspace removes the last character, if any.
func (s *searchUI) backspace() {
	if len(s.buf) > 0 {
		s.buf = s.buf[:len(s.buf)-1]
	}
}

// text returns the in-progress pattern.
func (s *searchUI) text() string { return string(s.buf) }

// exit leaves search-editing mode. The pattern already committed to
// table by the most recent keystroke remains active; Esc does not
// revert it, matching spec.md's wording ("Esc exits search UI") rather
// than "Esc cancels the edit".
func (s *searchUI) exit() {
	s.active = false
}
