package guard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owuorviny109/crmsync/internal/guard"
)

type staticAuth bool

func (a staticAuth) IsAuthenticated() bool { return bool(a) }

func TestGuard_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		route         guard.Route
		want          guard.Decision
	}{
		{
			name:          "protected route anonymous",
			authenticated: false,
			route:         guard.Route{Name: "leads", RequiresAuth: true},
			want:          guard.Decision{RedirectTo: "login"},
		},
		{
			name:          "protected route authenticated",
			authenticated: true,
			route:         guard.Route{Name: "leads", RequiresAuth: true},
			want:          guard.Decision{Allow: true},
		},
		{
			name:          "guest route authenticated",
			authenticated: true,
			route:         guard.Route{Name: "login", RequiresGuest: true},
			want:          guard.Decision{RedirectTo: "dashboard"},
		},
		{
			name:          "guest route anonymous",
			authenticated: false,
			route:         guard.Route{Name: "login", RequiresGuest: true},
			want:          guard.Decision{Allow: true},
		},
		{
			name:          "open route anonymous",
			authenticated: false,
			route:         guard.Route{Name: "about"},
			want:          guard.Decision{Allow: true},
		},
		{
			name:          "open route authenticated",
			authenticated: true,
			route:         guard.Route{Name: "about"},
			want:          guard.Decision{Allow: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := guard.New(staticAuth(tt.authenticated), "login", "dashboard")
			require.Equal(t, tt.want, g.Resolve(tt.route))
		})
	}
}
