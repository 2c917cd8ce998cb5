// Package testdb provides utilities for tests that run against a real
// PostgreSQL database.
//
// Tests using it carry the integration build tag and read the connection
// string from LEXIS_TEST_DATABASE_URL (or DATABASE_URL). Outside CI a missing
// URL skips the test; in CI it fails it, so a misconfigured pipeline cannot
// silently pass.
//
// Two isolation styles are offered:
//
//   - WithTx runs the test body in a transaction that is always rolled back.
//     Use it for store tests, which accept a transaction directly.
//   - ResetTables truncates every table. Use it for service tests that open
//     and commit their own transactions.
//
// Example:
//
//	func TestIntegration_Something(t *testing.T) {
//		db := testdb.OpenTestDatabase(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			vocabs := postgres.NewPostgresVocabStore(tx, nil)
//			...
//		})
//	}
package testdb
