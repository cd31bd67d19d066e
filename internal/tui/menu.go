package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

// linkParents sets Parent pointers and points every "Back" item at its
// parent menu. A root "Back" closes the menu.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func buildMenuTree(m *Model) *Menu {
	dataset := &Menu{
		Title: "Dataset",
		Items: []MenuItem{
			{Label: "Reload file", Action: m.reload},
			{Label: "Clear", Action: m.clear},
			{Label: "Back"},
		},
	}

	view := &Menu{
		Title: "View",
		Items: []MenuItem{
			{Label: "Clear filter", Action: func() tea.Cmd {
				m.filter.SetValue("")
				m.session.SetFilter("")
				return nil
			}},
			{Label: "First page", Action: func() tea.Cmd {
				m.session.SetPage(1)
				return nil
			}},
			{Label: "Last page", Action: func() tea.Cmd {
				m.session.SetPage(m.session.Render().TotalPages)
				return nil
			}},
			{Label: "Back"},
		},
	}

	root := &Menu{
		Title: "Actions",
		Items: []MenuItem{
			{Label: "Export JSON", Action: m.exportCmd},
			{Label: "Dataset ->", Submenu: dataset},
			{Label: "View ->", Submenu: view},
			{Label: "Back"},
		},
	}

	linkParents(root, nil)

	return root
}
