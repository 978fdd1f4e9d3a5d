package usecases

import (
	"strings"

	"luxe-estates.backend/internal/domain/entities"
)

const (
	AdminLoginPath      = "/admin/login"
	AdminDashboardPath  = "/admin/dashboard"
	MemberDashboardPath = "/member/dashboard"
)

// RouteDecision tells the client whether to render path or redirect
type RouteDecision struct {
	Path       string `json:"path"`
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirectTo,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ResolveRoute applies the route-level session rules:
// anonymous viewers on admin or member pages go to the matching sign-in page,
// signed-in admins on a sign-in page go to the admin dashboard.
func ResolveRoute(path string, viewer entities.Viewer) RouteDecision {
	path = cleanRoutePath(path)
	decision := RouteDecision{Path: path, Allowed: true}

	isAdminLogin := path == AdminLoginPath
	isMemberLogin := path == MemberLoginPath

	switch {
	case isAdminLogin || isMemberLogin:
		if viewer.Authenticated && viewer.Role == entities.RoleAdmin {
			return redirect(decision, AdminDashboardPath, "already signed in")
		}
		if viewer.Authenticated && isMemberLogin {
			return redirect(decision, MemberDashboardPath, "already signed in")
		}
	case underPrefix(path, "/admin"):
		if !viewer.Authenticated {
			return redirect(decision, AdminLoginPath, "sign in required")
		}
		if viewer.Role != entities.RoleAdmin {
			return redirect(decision, MemberDashboardPath, "admin role required")
		}
	case underPrefix(path, "/member"):
		if !viewer.Authenticated {
			return redirect(decision, MemberLoginPath, "sign in required")
		}
	}
	return decision
}

func redirect(d RouteDecision, to, reason string) RouteDecision {
	d.Allowed = false
	d.RedirectTo = to
	d.Reason = reason
	return d
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func cleanRoutePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path = strings.TrimRight(path, "/"); path == "" {
		return "/"
	}
	return path
}
