package adapter

// PasswordHasher turns passwords into stored hashes and checks them back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Check reports whether password produced hash.
	Check(hash, password string) bool
	// Outdated reports whether hash was made with weaker settings than the
	// hasher currently uses, so it should be replaced on the next sign-in.
	Outdated(hash string) bool
}
