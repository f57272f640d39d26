package view

// Placement is the side of the screen the toggle button sits on.
type Placement string

const (
	PlacementLeft  Placement = "left"
	PlacementRight Placement = "right"
)

// BodyClassOpen is added to the document body while the modal is open.
const BodyClassOpen = "ContractExplorer--open"

// Modal is the open/closed state of the explorer window.
type Modal struct {
	Open      bool      `json:"open"`
	Placement Placement `json:"placement"`
}

// NewModal returns a modal in its initial state. Unknown placements fall back
// to the right side.
func NewModal(initialOpen bool, placement Placement) Modal {
	if placement != PlacementLeft {
		placement = PlacementRight
	}
	return Modal{Open: initialOpen, Placement: placement}
}

// Toggle opens a closed modal and closes an open one.
func (m *Modal) Toggle() { m.Open = !m.Open }

// Title is the label of the toggle button.
func (m Modal) Title() string {
	if m.Open {
		return "Close Contract Explorer"
	}
	return "Open Contract Explorer"
}

// BodyClass is the class the document body should carry.
func (m Modal) BodyClass() string {
	if m.Open {
		return BodyClassOpen
	}
	return ""
}

// ToggleClass is the class list of the toggle button.
func (m Modal) ToggleClass() string {
	return "ContractExplorer__toggle ContractExplorer__toggle--" + string(m.Placement)
}
