package site

// Layout is the document metadata shared by every page
type Layout struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Lang        string     `json:"lang"`
	ColorScheme string     `json:"colorScheme"`
	Viewport    string     `json:"viewport"`
	Navigation  Navigation `json:"navigation"`
}

// Default layout metadata
const (
	DefaultTitle       = "HomeSwift - Home Services"
	DefaultDescription = "Professional home services at your doorstep"
)

// NewLayout builds the layout for a page. Empty title or description fall
// back to the defaults.
func NewLayout(title, description, currentPath string, loggedIn bool) Layout {
	if title == "" {
		title = DefaultTitle
	}
	if description == "" {
		description = DefaultDescription
	}
	return Layout{
		Title:       title,
		Description: description,
		Lang:        "en",
		ColorScheme: "light",
		Viewport:    "width=device-width, initial-scale=1",
		Navigation:  NewNavigation(currentPath, loggedIn),
	}
}
