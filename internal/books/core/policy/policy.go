// Package policy is the authorization gate of the books service: a pure
// decision table over (principal, book, action) with no I/O.
package policy

import (
	"github.com/readshelf/library-system/internal/books/core/domain"
)

// Action names a book operation as seen by the gate.
type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Decision is the gate's verdict. Reason is set only on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether the principal may perform action on the book.
// Reads and creates are open to any authenticated principal. Updates require
// ownership or staff. Deletes require staff; owners may not delete their own
// books.
func Authorize(p *domain.Principal, book *domain.Book, action Action) Decision {
	if p == nil || !p.Authenticated {
		return deny("authentication required")
	}

	switch action {
	case ActionList, ActionRetrieve, ActionCreate:
		return allow()
	case ActionUpdate:
		if p.IsStaff {
			return allow()
		}
		if book != nil && book.UserID == p.ID {
			return allow()
		}
		return deny("only the owner or staff may update a book")
	case ActionDelete:
		if p.IsStaff {
			return allow()
		}
		return deny("only staff may delete a book")
	default:
		return deny("unknown action")
	}
}
