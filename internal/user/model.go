package user

import "time"

// User owns zero or more credit cards.
type User struct {
    ID        string
    Name      string
    Email     string
    CreatedAt time.Time
}

// CreateInput request structure.
type CreateInput struct {
    Name  string
    Email string
}
