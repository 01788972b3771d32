package client

import (
	"context"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
)

func (c *Client) GetAdminStats(ctx context.Context) (events.AdminStats, error) {
	return do[events.AdminStats](ctx, c, "/admin/stats", RequestOptions{})
}
