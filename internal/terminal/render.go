package terminal

import (
	"fmt"
	"strings"

	"booknest/internal/book"
	"booknest/internal/profile"
	"booknest/internal/screen"
)

const (
	currency    = "₱"
	noImage     = "No Image"
	dateDisplay = "2006-01-02"
)

func renderBook(i int, b book.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s", i+1, b.Title)
	if b.Author != "" {
		fmt.Fprintf(&sb, " by %s", b.Author)
	}
	fmt.Fprintf(&sb, "\n   ISBN %s  %s%s  qty %d", b.ISBN, currency, b.Price.StringFixed(2), b.Quantity)
	if b.HasImage() {
		fmt.Fprintf(&sb, "\n   [%s]", b.Image)
	} else {
		fmt.Fprintf(&sb, "\n   [%s]", noImage)
	}
	return sb.String()
}

func renderInventory(v screen.InventoryView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search: %s\n", v.Search)
	if len(v.Books) == 0 {
		sb.WriteString("No books yet.\n")
		return sb.String()
	}
	for i, b := range v.Books {
		sb.WriteString(renderBook(i, b))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderProfile(v screen.ProfileView) string {
	switch {
	case v.Loading:
		return "Loading...\n"
	case !v.Found:
		return "First name: \nLast name: \nRole: \nBirthdate: \n"
	}
	return fmt.Sprintf("First name: %s\nLast name: %s\nRole: %s\nBirthdate: %s\n",
		v.Profile.FirstName, v.Profile.LastName, v.Profile.Role, formatDate(v.Profile))
}

func formatDate(p profile.Profile) string {
	if p.Birthdate.IsZero() {
		return ""
	}
	return p.Birthdate.Format(dateDisplay)
}

func renderTabs(active screen.Tab) string {
	parts := make([]string, len(screen.Tabs))
	for i, t := range screen.Tabs {
		if t == active {
			parts[i] = "[" + string(t) + "]"
		} else {
			parts[i] = " " + string(t) + " "
		}
	}
	return strings.Join(parts, " ")
}
