// Package mocks provides shared test doubles for the store and auth interfaces.
//
// The store doubles keep their data in memory and honor the same contracts as
// the PostgreSQL stores (ownership filtering, not-found errors, duplicate
// e-mails), so service and handler tests can exercise real behavior without a
// database. Each double exposes optional function fields to inject failures:
//
//	users := mocks.NewMockUserStore()
//	users.UpdateFn = func(ctx context.Context, u *domain.User) error {
//	    return errors.New("boom")
//	}
//
// WithTx returns the receiver, so transactional code paths see the same data.
package mocks
