// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	"github.com/dalemusser/standhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSiteName is shown in the chrome when no override is configured.
const DefaultSiteName = "StandHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string

	// Unread notification count for the nav badge
	UnreadCount int64

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string // Token for form submission
}

// UnreadCounter reports the signed-in user's unread notification count.
// Set by bootstrap to avoid a dependency cycle with the stores.
type UnreadCounter func(ctx context.Context, userID primitive.ObjectID) int64

var unreadCounter UnreadCounter

// SetUnreadCounter installs the badge-count loader. Call once at startup.
func SetUnreadCounter(fn UnreadCounter) {
	unreadCounter = fn
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	name, userID, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  signedIn,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if signedIn && unreadCounter != nil {
		vm.UnreadCount = unreadCounter(r.Context(), userID)
	}

	return vm
}
