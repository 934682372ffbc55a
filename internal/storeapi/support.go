package storeapi

import "context"

func (c *Client) CreateComplaint(ctx context.Context, req ComplaintRequest) (Complaint, error) {
	var out Complaint
	err := c.post(ctx, "/api/complaints", req, &out)
	return out, err
}

func (c *Client) ListComplaints(ctx context.Context) ([]Complaint, error) {
	var out []Complaint
	err := c.get(ctx, "/api/complaints", nil, &out)
	return out, err
}

// SendContactMessage posts to the public contact form; no session is needed.
func (c *Client) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	return c.post(ctx, "/api/contact", msg, nil)
}
