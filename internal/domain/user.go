package domain

// User is the account data kept in client state. It never carries the password.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// Account is a user record as returned by the backend's users collection, which includes the password.
type Account struct {
	User
	Password string `json:"password"`
}

// Safe strips the password from the account.
func (a Account) Safe() User {
	return a.User
}

// NewAccount is the payload used to create a user.
type NewAccount struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}
