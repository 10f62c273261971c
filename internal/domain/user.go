package domain

// User is the principal. Balance is in minor currency units.
type User struct {
	Username     string
	PasswordHash []byte
	Salt         []byte
	Balance      int64
}
