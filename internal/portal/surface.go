// Package portal holds the client-side role gate and the signed-in session.
package portal

import "strings"

// Role is the closed set of views a caller can be dispatched to.
type Role string

const (
	Admin    Role = "admin"
	Security Role = "security"
	Resident Role = "resident"
	Guest    Role = "guest"
)

// ParseRole maps a server role name to a Role; anything unknown is Guest.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case Admin:
		return Admin
	case Security:
		return Security
	case Resident:
		return Resident
	}
	return Guest
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Label string
	Path  string
}

// Surface is the set of routes a role may reach and the menu it is shown.
type Surface struct {
	Role   Role
	Home   string
	Routes []string
	Menu   []MenuItem
}

// Allows reports whether path is reachable on this surface.
func (s Surface) Allows(path string) bool {
	for _, r := range s.Routes {
		if r == path {
			return true
		}
	}
	return false
}

// Route paths shared by the role surfaces and the gatectl commands.
const (
	PathLogin         = "/login"
	PathRegister      = "/register"
	PathProfile       = "/profile"
	PathAlerts        = "/alerts"
	PathDashboard     = "/dashboard"
	PathVisitors      = "/visitors"
	PathVerifyVisitor = "/visitors/verify"
	PathSecurity      = "/security"
	PathAdmin         = "/admin"
	PathAdminUsers    = "/admin/users"
)

var (
	adminMenu = []MenuItem{
		{"Dashboard", PathAdmin},
		{"Users", PathAdminUsers},
		{"Bookings", "/admin/bookings"},
		{"Polls", "/admin/polls"},
		{"Announcements", "/admin/announcements"},
		{"Complaints", "/admin/complaints"},
		{"Payments", "/admin/payments"},
		{"Broadcast Alert", "/admin/alerts"},
		{"My Alerts", PathAlerts},
	}
	securityMenu = []MenuItem{
		{"Dashboard", PathSecurity},
		{"Alerts", PathAlerts},
	}
	residentMenu = []MenuItem{
		{"Dashboard", PathDashboard},
		{"Amenities", "/amenities"},
		{"Polls", "/polls"},
		{"Payments", "/payments"},
		{"Visitors", PathVisitors},
		{"Announcements", "/announcements"},
		{"Complaints", "/complaints"},
		{"My Points", "/gamification"},
		{"Alerts", PathAlerts},
	}
	profileItem = MenuItem{"Profile", PathProfile}
)

// AllowedSurface is the single dispatch point from role to reachable routes and menu.
func AllowedSurface(role Role) Surface {
	switch role {
	case Admin:
		return signedIn(Admin, PathAdmin, adminMenu, PathVerifyVisitor)
	case Security:
		return signedIn(Security, PathSecurity, securityMenu, PathVerifyVisitor)
	case Resident:
		return signedIn(Resident, PathDashboard, residentMenu)
	default:
		return Surface{
			Role:   Guest,
			Home:   PathLogin,
			Routes: []string{PathLogin, PathRegister},
		}
	}
}

func signedIn(role Role, home string, menu []MenuItem, extraRoutes ...string) Surface {
	items := make([]MenuItem, 0, len(menu)+1)
	items = append(items, menu...)
	items = append(items, profileItem)

	routes := make([]string, 0, len(items)+len(extraRoutes))
	for _, item := range items {
		routes = append(routes, item.Path)
	}
	routes = append(routes, extraRoutes...)

	return Surface{Role: role, Home: home, Routes: routes, Menu: items}
}
