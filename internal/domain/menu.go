package domain

// MenuItem is one entry of the site header navigation.
type MenuItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

// HeaderMenu returns a fresh copy of the static header navigation.
func HeaderMenu() []MenuItem {
	return []MenuItem{
		{ID: 1, Title: "Home", URL: "/", Icon: "home"},
		{ID: 2, Title: "Brands", URL: "/brands", Icon: "brand"},
		{ID: 3, Title: "Categories", URL: "/categories", Icon: "category"},
		{ID: 4, Title: "About", URL: "/about", Icon: "info"},
		{ID: 5, Title: "Contact", URL: "/contact", Icon: "contact"},
	}
}
