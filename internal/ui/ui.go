// Package ui provides the system tray and the processes window.
package ui

import (
	"fmt"

	"fyne.io/systray"

	"github.com/user/traffic-silencer/internal/core"
	"github.com/user/traffic-silencer/internal/iconres"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/reconcile"
)

var (
	service *core.Service
	toggles *toggler

	// Systray menu items
	mStatus    *systray.MenuItem
	mLastRule  *systray.MenuItem
	mProcesses *systray.MenuItem
	mRemoveAll *systray.MenuItem
	mShowLog   *systray.MenuItem
	mClearLog  *systray.MenuItem
	mDebug     *systray.MenuItem
	mReload    *systray.MenuItem
	mQuit      *systray.MenuItem
)

// Run starts the service and the tray. It blocks until Quit is chosen.
func Run(svc *core.Service) error {
	service = svc
	toggles = newToggler(service.SetBlocked, func(name string, blocked bool) {
		showError(ToggleFailure(name, blocked))
	})

	service.SetStatusListener(func(status *core.Status) {
		updateUI(status)
	})
	service.OnChange(func(views []reconcile.GroupView) {
		refreshProcessesWindow(views)
	})

	if err := service.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	systray.Run(onReady, onExit)
	return nil
}

// onReady is called when systray is ready
func onReady() {
	systray.SetIcon(iconres.AppIcon())
	systray.SetTitle("Traffic Silencer")
	systray.SetTooltip("Traffic Silencer")

	// Left click on tray icon opens the processes window
	systray.SetOnTapped(func() {
		go openProcesses()
	})

	mStatus = systray.AddMenuItem("Loading processes...", "")
	mStatus.Disable()
	mLastRule = systray.AddMenuItem("No rule changes yet", "Last firewall rule change")
	mLastRule.Disable()

	systray.AddSeparator()

	mProcesses = systray.AddMenuItem("Processes", "Show running executables and their block state")
	mRemoveAll = systray.AddMenuItem("Remove all rules", "Unblock every blocked executable")

	systray.AddSeparator()

	mShowLog = systray.AddMenuItem("Show log", "Open the log file")
	mClearLog = systray.AddMenuItem("Clear log", "Truncate the log file")
	mDebug = systray.AddMenuItemCheckbox("Debug logging", "Write DEBUG lines to the log", false)
	mReload = systray.AddMenuItem("Reload config", "Re-read config.yaml")
	syncDebugItem()

	systray.AddSeparator()

	mQuit = systray.AddMenuItem("Quit", "")

	logger.AddListener(onLogLine)
	updateUI(service.GetStatus())

	go func() {
		defer logger.Recover("systray-menu-loop")
		for {
			select {
			case <-mProcesses.ClickedCh:
				go openProcesses()
			case <-mRemoveAll.ClickedCh:
				go doRemoveAll()
			case <-mShowLog.ClickedCh:
				go openLogFile()
			case <-mClearLog.ClickedCh:
				go doClearLog()
			case <-mDebug.ClickedCh:
				doToggleDebug()
			case <-mReload.ClickedCh:
				doReloadConfig()
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when systray exits
func onExit() {
	logger.Info("Traffic Silencer shutting down")
	closeProcessesWindow()
	if toggles != nil {
		toggles.close()
	}
	if service != nil {
		service.Stop()
	}
	logger.Close()
}

func doRemoveAll() {
	defer logger.Recover("doRemoveAll")
	logger.Rule("User requested removal of all block rules")

	if err := service.RemoveAll(); err != nil {
		logger.Error("Failed to remove all rules: %v", err)
		showError(fmt.Sprintf("Some rules could not be removed:\n%v", err))
	}
}

func doClearLog() {
	defer logger.Recover("doClearLog")

	if err := logger.ClearLogs(); err != nil {
		logger.Error("Failed to clear log: %v", err)
		showError(fmt.Sprintf("Failed to clear the log:\n%v", err))
		return
	}
	logger.Info("Log cleared")
}

func doToggleDebug() {
	enabled := !mDebug.Checked()
	if err := service.SetDebugLogging(enabled); err != nil {
		logger.Error("Failed to change debug logging: %v", err)
		showError(fmt.Sprintf("Failed to change debug logging:\n%v", err))
	}
	syncDebugItem()
}

func doReloadConfig() {
	if err := service.ReloadConfig(); err != nil {
		logger.Error("Failed to reload config: %v", err)
		showError(fmt.Sprintf("Failed to reload the configuration:\n%v", err))
	} else {
		logger.Info("Configuration reloaded; interval and worker changes apply on restart")
	}
	syncDebugItem()
}

// syncDebugItem mirrors the configured debug flag in the tray checkbox.
func syncDebugItem() {
	cfg := service.GetConfig()
	if cfg == nil {
		mDebug.Uncheck()
		mDebug.Disable()
		mReload.Disable()
		return
	}
	if cfg.Log.Debug {
		mDebug.Check()
	} else {
		mDebug.Uncheck()
	}
}

// onLogLine shows the latest rule change in the tray menu.
func onLogLine(line string) {
	defer logger.Recover("onLogLine")

	msg, ok := RuleMessage(line)
	if !ok {
		return
	}
	mLastRule.SetTitle(Shorten(msg, 64))
	mLastRule.SetTooltip(msg)
}

func updateUI(status *core.Status) {
	defer logger.Recover("updateUI")

	if status == nil || mStatus == nil {
		return
	}
	if status.Passes == 0 {
		return
	}

	mStatus.SetTitle(StatusLine(status))
	systray.SetTooltip("Traffic Silencer\n" + StatusLine(status))
	if status.Blocked > 0 {
		mRemoveAll.Enable()
	} else {
		mRemoveAll.Disable()
	}
}
