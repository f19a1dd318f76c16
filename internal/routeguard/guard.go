// Package routeguard decides whether a client may render a given path or
// must be redirected, based on the derived session state. The decision
// function is total and idempotent: evaluating it on its own redirect
// target always allows.
package routeguard

import (
	"strings"

	"github.com/campusbridge/jobmarket/internal/session"
)

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"

	StudentSection  = "/student"
	EmployerSection = "/employer"

	StudentDashboard  = "/student/jobs"
	EmployerDashboard = "/employer/jobs"
)

type Action string

const (
	ActionAllow    Action = "allow"
	ActionRedirect Action = "redirect"
)

type Decision struct {
	Action Action `json:"action"`
	// Target is set only for redirects.
	Target string `json:"target,omitempty"`
}

func allow() Decision {
	return Decision{Action: ActionAllow}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// Decide evaluates the guard rules in precedence order.
func Decide(state session.State, path string) Decision {
	path = normalize(path)

	// While the initial session is still resolving, render a loading
	// affordance wherever the client is; never bounce it around.
	if state.Status == session.StatusLoading {
		return allow()
	}

	if state.Status != session.StatusAuthenticated {
		if isLoginPage(path) || path == PathHome {
			return allow()
		}
		return redirect(PathHome)
	}

	if isLoginPage(path) {
		return redirect(dashboardFor(state.Role))
	}

	if state.Role == session.RoleStudent && underSection(path, EmployerSection) {
		return redirect(StudentDashboard)
	}

	if state.Role == session.RoleEmployer && underSection(path, StudentSection) {
		return redirect(EmployerDashboard)
	}

	return allow()
}

func dashboardFor(role session.Role) string {
	switch role {
	case session.RoleStudent:
		return StudentDashboard
	case session.RoleEmployer:
		return EmployerDashboard
	default:
		return PathHome
	}
}

func isLoginPage(path string) bool {
	return path == PathLogin || path == PathRegister
}

func underSection(path, section string) bool {
	return path == section || strings.HasPrefix(path, section+"/")
}

func normalize(path string) string {
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathHome
		}
	}
	return path
}
