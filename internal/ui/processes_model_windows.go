//go:build windows

package ui

import (
	"os"
	"strings"

	"github.com/lxn/walk"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/reconcile"
)

// groupModel backs the processes table. Column 0 carries the checkbox and
// icon. It is only touched on the window's UI thread.
type groupModel struct {
	walk.TableModelBase
	all    []reconcile.GroupView
	items  []reconcile.GroupView
	filter string
	icons  map[string]*walk.Icon
}

func newGroupModel() *groupModel {
	return &groupModel{icons: make(map[string]*walk.Icon)}
}

func (m *groupModel) RowCount() int {
	return len(m.items)
}

func (m *groupModel) Value(row, col int) interface{} {
	if row < 0 || row >= len(m.items) {
		return nil
	}
	g := m.items[row]
	switch col {
	case 0:
		return g.Name
	case 1:
		return len(g.Processes)
	case 2:
		if g.Path == "" {
			return NoPath
		}
		return g.Path
	}
	return nil
}

// Checked is called by the TableView to get the checkbox state.
func (m *groupModel) Checked(row int) bool {
	if row < 0 || row >= len(m.items) {
		return false
	}
	return m.items[row].Blocked
}

// SetChecked is called when the operator toggles a checkbox. The toggle is
// queued for the toggle worker; the model update arrives via OnChange.
func (m *groupModel) SetChecked(row int, checked bool) error {
	if row < 0 || row >= len(m.items) {
		return nil
	}
	name := m.items[row].Name
	m.items[row].Blocked = checked

	if !toggles.submit(name, checked) {
		logger.Warning("Toggle for %s dropped, shutting down", name)
	}
	return nil
}

// Image returns the executable's icon for the first column.
func (m *groupModel) Image(row int) interface{} {
	if row < 0 || row >= len(m.items) {
		return nil
	}
	g := m.items[row]
	key := strings.ToLower(g.Name)
	if icon, ok := m.icons[key]; ok {
		return icon
	}
	icon := iconFromICO(g.Icon)
	m.icons[key] = icon
	if icon == nil {
		return nil
	}
	return icon
}

// update replaces the model contents with a fresh engine view.
func (m *groupModel) update(views []reconcile.GroupView) {
	m.all = views

	present := make(map[string]bool, len(views))
	for _, g := range views {
		present[strings.ToLower(g.Name)] = true
	}
	for key, icon := range m.icons {
		if !present[key] {
			if icon != nil {
				icon.Dispose()
			}
			delete(m.icons, key)
		}
	}

	m.apply()
}

func (m *groupModel) setFilter(filter string) {
	m.filter = filter
	m.apply()
}

func (m *groupModel) apply() {
	m.items = reconcile.Filter(m.all, m.filter)
	m.PublishRowsReset()
}

func (m *groupModel) indexOf(name string) int {
	for i, g := range m.items {
		if strings.EqualFold(g.Name, name) {
			return i
		}
	}
	return -1
}

func (m *groupModel) dispose() {
	for key, icon := range m.icons {
		if icon != nil {
			icon.Dispose()
		}
		delete(m.icons, key)
	}
}

// iconFromICO loads ICO bytes through a temporary file, which is the only
// way walk accepts icon data.
func iconFromICO(data []byte) *walk.Icon {
	if len(data) == 0 {
		return nil
	}

	tmpFile, err := os.CreateTemp("", "traffic-silencer-*.ico")
	if err != nil {
		return nil
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return nil
	}
	tmpFile.Close()

	icon, err := walk.NewIconFromFile(tmpPath)
	os.Remove(tmpPath)
	if err != nil {
		return nil
	}
	return icon
}
