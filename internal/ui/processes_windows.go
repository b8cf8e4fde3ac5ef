//go:build windows

package ui

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/lxn/walk"
	. "github.com/lxn/walk/declarative"

	"github.com/user/traffic-silencer/internal/iconres"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/reconcile"
)

var (
	procWindow   *walk.MainWindow
	procWindowMu sync.Mutex

	procTable      *walk.TableView
	procModel      *groupModel
	procFilter     *walk.LineEdit
	procDetails    *walk.ListBox
	procCountLabel *walk.Label
)

// openProcesses shows the processes window, creating it on first use.
func openProcesses() {
	defer logger.Recover("openProcesses")

	procWindowMu.Lock()
	if procWindow != nil {
		win := procWindow
		procWindowMu.Unlock()
		win.Synchronize(func() {
			win.Show()
		})
		return
	}
	procWindowMu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	windowIcon := iconFromICO(iconres.AppIcon())
	procModel = newGroupModel()

	var mw *walk.MainWindow

	if err := (MainWindow{
		AssignTo: &mw,
		Title:    ProcessesTitle,
		MinSize:  Size{Width: 600, Height: 400},
		Size:     Size{Width: 820, Height: 560},
		Layout:   VBox{Margins: Margins{Left: 8, Top: 8, Right: 8, Bottom: 8}},
		Children: []Widget{
			Composite{
				Layout: HBox{MarginsZero: true, Spacing: 6},
				Children: []Widget{
					Label{Text: "Filter:"},
					LineEdit{
						AssignTo:    &procFilter,
						ToolTipText: "Part of an executable name",
						OnTextChanged: func() {
							procModel.setFilter(procFilter.Text())
							reselect()
						},
					},
					PushButton{
						Text:    "Remove all rules",
						MaxSize: Size{Width: 120, Height: 28},
						OnClicked: func() {
							confirmRemoveAll(mw)
						},
					},
				},
			},
			HSplitter{
				Children: []Widget{
					TableView{
						AssignTo:         &procTable,
						AlternatingRowBG: true,
						CheckBoxes:       true,
						ColumnsOrderable: true,
						Model:            procModel,
						StretchFactor:    3,
						OnCurrentIndexChanged: func() {
							onSelectionChanged()
						},
						Columns: []TableViewColumn{
							{Title: "Executable", Width: 200},
							{Title: "Processes", Width: 70},
							{Title: "Path", Width: 360},
						},
					},
					ListBox{
						AssignTo:      &procDetails,
						StretchFactor: 1,
					},
				},
			},
			Composite{
				Layout: HBox{MarginsZero: true},
				Children: []Widget{
					Label{AssignTo: &procCountLabel, Text: "Loading...", Font: Font{PointSize: 8}},
					HSpacer{},
					Label{Text: "Checked executables cannot reach the network.", Font: Font{PointSize: 8}},
				},
			},
		},
	}).Create(); err != nil {
		logger.Error("Failed to create processes window: %v", err)
		return
	}

	if windowIcon != nil {
		mw.SetIcon(windowIcon)
	}

	procWindowMu.Lock()
	procWindow = mw
	procWindowMu.Unlock()

	procModel.update(service.Groups())
	reselect()
	updateCount()

	mw.Run()

	// Window closed, clean up
	procWindowMu.Lock()
	procWindow = nil
	procWindowMu.Unlock()
	service.Engine().Select("")
	procModel.dispose()
	if windowIcon != nil {
		windowIcon.Dispose()
	}
}

// refreshProcessesWindow pushes a new model view to the open window.
func refreshProcessesWindow(views []reconcile.GroupView) {
	procWindowMu.Lock()
	win := procWindow
	procWindowMu.Unlock()
	if win == nil {
		return
	}
	win.Synchronize(func() {
		procModel.update(views)
		reselect()
		updateCount()
	})
}

func closeProcessesWindow() {
	procWindowMu.Lock()
	win := procWindow
	procWindowMu.Unlock()
	if win == nil {
		return
	}
	win.Synchronize(func() {
		win.Close()
	})
}

// reselect restores the table selection from the engine after a reset.
func reselect() {
	name, ok := service.Engine().Selected()
	idx := -1
	if ok {
		idx = procModel.indexOf(name)
	}
	procTable.SetCurrentIndex(idx)
	showDetails(idx)
}

func onSelectionChanged() {
	idx := procTable.CurrentIndex()
	if idx >= 0 && idx < len(procModel.items) {
		service.Engine().Select(procModel.items[idx].Name)
	}
	showDetails(idx)
}

func showDetails(idx int) {
	if procDetails == nil {
		return
	}
	if idx < 0 || idx >= len(procModel.items) {
		procDetails.SetModel([]string{})
		return
	}
	procDetails.SetModel(ProcessLabels(procModel.items[idx]))
}

func updateCount() {
	blocked := 0
	for _, g := range procModel.all {
		if g.Blocked {
			blocked++
		}
	}
	procCountLabel.SetText(fmt.Sprintf("%d executables, %d shown, %d blocked",
		len(procModel.all), len(procModel.items), blocked))
}

func confirmRemoveAll(owner walk.Form) {
	if walk.MsgBox(owner, "Remove all rules",
		"Unblock every blocked executable?", walk.MsgBoxYesNo|walk.MsgBoxIconQuestion) != walk.DlgCmdYes {
		return
	}
	go doRemoveAll()
}

func showError(message string) {
	logger.Error("%s", message)

	procWindowMu.Lock()
	win := procWindow
	procWindowMu.Unlock()
	if win == nil {
		return
	}
	win.Synchronize(func() {
		walk.MsgBox(win, "Traffic Silencer", message, walk.MsgBoxOK|walk.MsgBoxIconWarning)
	})
}
