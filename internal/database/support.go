package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const complaintColumns = `id, user_id, order_id, subject, message, status, created_at`

func scanComplaint(row interface{ Scan(...interface{}) error }) (Complaint, error) {
	var c Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.OrderID, &c.Subject, &c.Message, &c.Status, &c.CreatedAt)
	return c, err
}

const createComplaint = `INSERT INTO complaints (user_id, order_id, subject, message)
VALUES ($1, $2, $3, $4)
RETURNING ` + complaintColumns

type CreateComplaintParams struct {
	UserID  uuid.UUID
	OrderID pgtype.UUID
	Subject string
	Message string
}

func (q *Queries) CreateComplaint(ctx context.Context, arg CreateComplaintParams) (Complaint, error) {
	return scanComplaint(q.db.QueryRow(ctx, createComplaint, arg.UserID, arg.OrderID, arg.Subject, arg.Message))
}

const listComplaintsByUser = `SELECT ` + complaintColumns + `
FROM complaints
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListComplaintsByUser(ctx context.Context, userID uuid.UUID) ([]Complaint, error) {
	rows, err := q.db.Query(ctx, listComplaintsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createContactMessage = `INSERT INTO contact_messages (name, email, message)
VALUES ($1, $2, $3)
RETURNING id, name, email, message, created_at`

type CreateContactMessageParams struct {
	Name    string
	Email   string
	Message string
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	var m ContactMessage
	err := q.db.QueryRow(ctx, createContactMessage, arg.Name, arg.Email, arg.Message).Scan(
		&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt)
	return m, err
}

// An empty status lists every complaint.
const listComplaints = `SELECT ` + complaintColumns + `
FROM complaints
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListComplaintsParams struct {
	Status string
	Limit  int32
	Offset int32
}

func (q *Queries) ListComplaints(ctx context.Context, arg ListComplaintsParams) ([]Complaint, error) {
	rows, err := q.db.Query(ctx, listComplaints, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const updateComplaintStatus = `UPDATE complaints
SET status = $2
WHERE id = $1
RETURNING ` + complaintColumns

type UpdateComplaintStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateComplaintStatus(ctx context.Context, arg UpdateComplaintStatusParams) (Complaint, error) {
	return scanComplaint(q.db.QueryRow(ctx, updateComplaintStatus, arg.ID, arg.Status))
}
