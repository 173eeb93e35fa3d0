package policy

import (
	"testing"

	"github.com/readshelf/library-system/internal/books/core/domain"
)

func principal(id int64, staff bool) *domain.Principal {
	return &domain.Principal{ID: id, Username: "u", Authenticated: true, IsStaff: staff}
}

func book(ownerID int64) *domain.Book {
	return &domain.Book{ID: 1, Title: "t", UserID: ownerID}
}

func TestAuthorize_Table(t *testing.T) {
	cases := []struct {
		name      string
		p         *domain.Principal
		b         *domain.Book
		action    Action
		wantAllow bool
	}{
		{"unauthenticated denied everywhere", &domain.Principal{ID: 5}, book(5), ActionRetrieve, false},
		{"nil principal denied", nil, book(5), ActionList, false},
		{"any authenticated may list", principal(5, false), nil, ActionList, true},
		{"any authenticated may retrieve", principal(5, false), book(7), ActionRetrieve, true},
		{"any authenticated may create", principal(5, false), nil, ActionCreate, true},
		{"owner may update", principal(5, false), book(5), ActionUpdate, true},
		{"non-owner may not update", principal(5, false), book(7), ActionUpdate, false},
		{"staff may update any", principal(5, true), book(7), ActionUpdate, true},
		{"staff may delete", principal(5, true), book(7), ActionDelete, true},
		{"owner may not delete own book", principal(5, false), book(5), ActionDelete, false},
		{"unknown action denied", principal(5, true), book(5), Action("publish"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.p, tc.b, tc.action)
			if d.Allowed != tc.wantAllow {
				t.Fatalf("Authorize(%v) = %+v, want allowed=%v", tc.action, d, tc.wantAllow)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("deny without a reason")
			}
		})
	}
}
