package httpserver

import "net/http"

// Routes groups handlers by endpoint.
type Routes struct {
	Health http.HandlerFunc

	ListCustomers   http.HandlerFunc
	CreateCustomer  http.HandlerFunc
	CustomerByPhone http.HandlerFunc

	ListStations  http.HandlerFunc
	CreateStation http.HandlerFunc
	UpdateStation http.HandlerFunc
	DeleteStation http.HandlerFunc

	CheckIn        http.HandlerFunc
	EndSession     http.HandlerFunc
	ActiveSessions http.HandlerFunc

	DashboardMetrics     http.HandlerFunc
	DashboardRevenue     http.HandlerFunc
	DashboardUtilization http.HandlerFunc

	ListAlerts    http.HandlerFunc
	MarkAlertRead http.HandlerFunc

	ListActivities http.HandlerFunc

	ListTargets  http.HandlerFunc
	CreateTarget http.HandlerFunc

	AdminLogin    http.HandlerFunc
	RunAlertCheck http.HandlerFunc
	RunExport     http.HandlerFunc

	LiveFeed http.HandlerFunc
}

// NewRouter registers endpoints. Admin-only endpoints are wrapped with the
// provided middleware.
func NewRouter(routes Routes, admin func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		if h != nil {
			mux.Handle(pattern, h)
		}
	}
	handleAdmin := func(pattern string, h http.HandlerFunc) {
		if h != nil {
			mux.Handle(pattern, admin(h))
		}
	}

	handle("GET /health", routes.Health)

	handle("GET /api/customers", routes.ListCustomers)
	handle("POST /api/customers", routes.CreateCustomer)
	handle("GET /api/customers/phone/{phone}", routes.CustomerByPhone)

	handle("GET /api/stations", routes.ListStations)
	handleAdmin("POST /api/stations", routes.CreateStation)
	handleAdmin("PUT /api/stations/{id}", routes.UpdateStation)
	handleAdmin("DELETE /api/stations/{id}", routes.DeleteStation)

	handle("POST /api/sessions", routes.CheckIn)
	handle("PATCH /api/sessions/{id}/end", routes.EndSession)
	handle("GET /api/sessions/active", routes.ActiveSessions)

	handle("GET /api/dashboard/metrics", routes.DashboardMetrics)
	handle("GET /api/dashboard/revenue", routes.DashboardRevenue)
	handle("GET /api/dashboard/utilization", routes.DashboardUtilization)

	handle("GET /api/alerts", routes.ListAlerts)
	handle("PATCH /api/alerts/{id}/read", routes.MarkAlertRead)

	handle("GET /api/activities", routes.ListActivities)

	handle("GET /api/targets", routes.ListTargets)
	handleAdmin("POST /api/targets", routes.CreateTarget)

	handle("POST /admin/login", routes.AdminLogin)
	handleAdmin("POST /admin/alerts/check", routes.RunAlertCheck)
	handleAdmin("POST /admin/export", routes.RunExport)

	handle("GET /ws", routes.LiveFeed)

	return mux
}
