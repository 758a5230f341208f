package site

// Link classes for the desktop menu
const (
	activeLinkClasses   = "bg-[#2563EB] text-white shadow-lg underline"
	inactiveLinkClasses = "text-[#111827] hover:bg-[#EFF6FF]"
)

// NavItem is one entry of the main menu
type NavItem struct {
	Href    string `json:"href"`
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Active  bool   `json:"active"`
	Classes string `json:"classes"`
}

// NavAction is an account control shown to the right of the menu
type NavAction struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
	// Action is set for controls that are not links, such as logout
	Action string `json:"action,omitempty"`
}

// Navigation is the rendered menu for one page
type Navigation struct {
	Items   []NavItem   `json:"items"`
	Account []NavAction `json:"account"`
}

var menu = []NavItem{
	{Href: "/", Label: "Home", Icon: "🏠"},
	{Href: "/services/cleaning", Label: "Services", Icon: "🧹"},
	{Href: "/book-service", Label: "Book Now", Icon: "📋"},
	{Href: "/faq", Label: "FAQ", Icon: "❓"},
	{Href: "/contact", Label: "Contact", Icon: "📞"},
}

// NewNavigation marks the item whose href equals currentPath as active.
// An empty path is treated as the home page.
func NewNavigation(currentPath string, loggedIn bool) Navigation {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]NavItem, len(menu))
	for i, item := range menu {
		item.Active = item.Href == currentPath
		item.Classes = inactiveLinkClasses
		if item.Active {
			item.Classes = activeLinkClasses
		}
		items[i] = item
	}

	account := []NavAction{{Label: "Login", Href: "/login"}}
	if loggedIn {
		account = []NavAction{
			{Label: "Profile", Href: "/profile"},
			{Label: "Logout", Action: "logout"},
		}
	}
	return Navigation{Items: items, Account: account}
}
