package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
)

// GrantLister resolves the fine-grained permission grants a user holds.
type GrantLister interface {
	ListForUser(ctx context.Context, userID int64) ([]string, error)
}

// Middleware resolves the bearer token into an actor and stores it on the
// request context. Requests without a usable token proceed as anonymous;
// rejecting them is each operation's job, not the middleware's.
func Middleware(tokens *TokenStore, repo RepositoryPort, grantList GrantLister) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := buildActor(r.Context(), tokens, repo, grantList, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func buildActor(ctx context.Context, tokens *TokenStore, repo RepositoryPort, grantList GrantLister, token string) (policy.Actor, error) {
	userID, err := tokens.Resolve(ctx, token)
	if err != nil {
		return policy.Actor{}, err
	}
	account, err := repo.FindByID(ctx, userID)
	if err != nil {
		return policy.Actor{}, err
	}
	if !account.IsActive {
		return policy.Actor{}, shared.ErrUnauthenticated
	}

	var roleNames, grantNames []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roleNames, err = repo.RoleNames(gctx, account.ID)
		return err
	})
	g.Go(func() error {
		var err error
		grantNames, err = grantList.ListForUser(gctx, account.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return policy.Actor{}, err
	}

	return policy.NewActor(account.ID, account.Username, account.IsSuperuser, account.IsStaff, roleNames, grantNames), nil
}
