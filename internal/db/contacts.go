package db

import (
	"context"
	"time"
)

type Contact struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateContactParams struct {
	Name         string
	Email        string
	Organization string
	Message      string
}

const createContactSQL = `
INSERT INTO contacts (name, email, organization, message)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, organization, message, created_at;
`

func (q *Queries) CreateContact(ctx context.Context, arg CreateContactParams) (Contact, error) {
	var c Contact
	err := q.db.QueryRow(ctx, createContactSQL,
		arg.Name, arg.Email, arg.Organization, arg.Message,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Organization, &c.Message, &c.CreatedAt)
	return c, err
}
