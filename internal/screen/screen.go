// Package screen holds the UI-independent screen controllers. A front-end
// renders their views and forwards user actions; alerts, confirmations and
// navigation go back out through the ports below.
package screen

type Route string

const (
	RouteLogin     Route = "/"
	RouteSignup    Route = "/signup"
	RouteDashboard Route = "/dashboard"
)

// Params are route parameters, e.g. "uid" for the dashboard.
type Params map[string]string

const ParamUID = "uid"

// Alerter shows a blocking message.
type Alerter interface {
	Alert(message string)
}

// Confirmer asks a yes/no question; true means the destructive action was
// chosen.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Navigator replaces the current screen.
type Navigator interface {
	Navigate(route Route, params Params)
}
