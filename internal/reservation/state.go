// AngelaMos | 2026
// state.go

package reservation

import (
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

// Actor is who asks for a status change.
type Actor string

const (
	ActorOwner Actor = "owner"
	ActorAdmin Actor = "admin"
)

type transition struct {
	From  Status
	To    Status
	Actor Actor
}

// Confirmation and completion are administrative. Owners can only
// cancel.
var transitions = []transition{
	{From: StatusPending, To: StatusConfirmed, Actor: ActorAdmin},
	{From: StatusPending, To: StatusCancelled, Actor: ActorAdmin},
	{From: StatusPending, To: StatusCancelled, Actor: ActorOwner},
	{From: StatusConfirmed, To: StatusCancelled, Actor: ActorAdmin},
	{From: StatusConfirmed, To: StatusCancelled, Actor: ActorOwner},
	{From: StatusConfirmed, To: StatusCompleted, Actor: ActorAdmin},
}

var transitionSet = func() map[transition]bool {
	m := make(map[transition]bool, len(transitions))
	for _, t := range transitions {
		m[t] = true
	}
	return m
}()

// NextStatuses lists the statuses reachable from s by any actor.
func NextStatuses(s Status) []Status {
	var next []Status
	seen := map[Status]bool{}
	for _, t := range transitions {
		if t.From == s && !seen[t.To] {
			next = append(next, t.To)
			seen[t.To] = true
		}
	}
	return next
}

// CanTransition returns an ErrInvalidState domain error when actor may
// not move a reservation from one status to another.
func CanTransition(from, to Status, actor Actor) error {
	if transitionSet[transition{From: from, To: to, Actor: actor}] {
		return nil
	}

	switch {
	case from == to:
		return core.NewDomainError(core.ErrInvalidState,
			fmt.Sprintf("reservation is already %s", from))
	case from.IsTerminal():
		return core.NewDomainError(core.ErrInvalidState,
			fmt.Sprintf("cannot change a %s reservation", from))
	}

	return core.NewDomainError(core.ErrInvalidState, fmt.Sprintf(
		"cannot move reservation from %s to %s; allowed: %s",
		from, to, describeNext(from),
	))
}

// CheckEditable rejects edits to reservations that reached a terminal
// status.
func CheckEditable(s Status) error {
	if s.IsTerminal() {
		return core.NewDomainError(core.ErrInvalidState,
			fmt.Sprintf("cannot modify %s reservations", s))
	}
	return nil
}

func describeNext(s Status) string {
	next := NextStatuses(s)
	if len(next) == 0 {
		return "none"
	}
	names := make([]string, 0, len(next))
	for _, n := range next {
		names = append(names, string(n))
	}
	return strings.Join(names, ", ")
}
