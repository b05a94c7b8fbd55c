// Package access models the employer-surface access states and the
// transitions between them.
package access

import (
	"errors"
	"fmt"

	"zerobarrier/internal/models"
)

// State is the access state of a caller with respect to a protected surface.
type State uint8

const (
	Unauthenticated State = iota
	Authenticating
	AuthenticatedWrongRole
	AuthenticatedCorrectRole
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case AuthenticatedWrongRole:
		return "authenticated_wrong_role"
	case AuthenticatedCorrectRole:
		return "authenticated_correct_role"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Redirect paths the client routes to for each settled state.
const (
	LoginPath        = "/login"
	AccessDeniedPath = "/access-denied"
	DashboardPath    = "/dashboard"
)

// EventKind enumerates the inputs of the state machine.
type EventKind uint8

const (
	Submit EventKind = iota + 1
	Accepted
	Rejected
	SignOut
)

func (k EventKind) String() string {
	switch k {
	case Submit:
		return "submit"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case SignOut:
		return "sign_out"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one input. Role and Required are only read on Accepted.
type Event struct {
	Kind     EventKind
	Role     models.Role
	Required models.Role
}

var ErrInvalidTransition = errors.New("invalid access transition")

// Transition returns the state reached from `from` on ev. It models the
// client sign-in flow; Decide settles a server request with it.
//
//	Unauthenticated --submit--> Authenticating
//	Authenticating  --accepted--> AuthenticatedCorrectRole | AuthenticatedWrongRole
//	Authenticating  --rejected--> Unauthenticated
//	Authenticated*  --sign_out--> Unauthenticated
func Transition(from State, ev Event) (State, error) {
	switch from {
	case Unauthenticated:
		if ev.Kind == Submit {
			return Authenticating, nil
		}
	case Authenticating:
		switch ev.Kind {
		case Accepted:
			if !ev.Role.Valid() || !ev.Required.Valid() {
				break
			}
			if ev.Role == ev.Required {
				return AuthenticatedCorrectRole, nil
			}
			return AuthenticatedWrongRole, nil
		case Rejected:
			return Unauthenticated, nil
		}
	case AuthenticatedWrongRole, AuthenticatedCorrectRole:
		if ev.Kind == SignOut {
			return Unauthenticated, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.Kind, from)
}

// Decision is the settled state of a request and where the client goes next.
type Decision struct {
	State    State  `json:"state"`
	Redirect string `json:"redirect"`
}

// Allowed reports whether the caller may use the surface.
func (d Decision) Allowed() bool { return d.State == AuthenticatedCorrectRole }

// Decide settles a request by running one sign-in attempt through
// Transition: a nil identity is a rejected attempt, otherwise the attempt is
// accepted with the identity's role. A role Transition refuses is denied.
func Decide(identity *models.Identity, required models.Role) Decision {
	state, _ := Transition(Unauthenticated, Event{Kind: Submit})

	ev := Event{Kind: Rejected}
	if identity != nil {
		ev = Event{Kind: Accepted, Role: identity.Role, Required: required}
	}
	state, err := Transition(state, ev)
	if err != nil {
		state = AuthenticatedWrongRole
	}

	switch state {
	case AuthenticatedCorrectRole:
		return Decision{State: state, Redirect: DashboardPath}
	case AuthenticatedWrongRole:
		return Decision{State: state, Redirect: AccessDeniedPath}
	}
	return Decision{State: Unauthenticated, Redirect: LoginPath}
}
