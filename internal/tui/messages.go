package tui

import "github.com/andy/invoicer/internal/controller"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// jobDoneMsg delivers a finished controller job back to the event loop
type jobDoneMsg struct {
	res controller.Result
}
