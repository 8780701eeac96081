package out

import (
	"context"
	"net/url"

	"healthdash/internal/modules/analytics/domain"
	analyticsout "healthdash/internal/modules/analytics/port/out"
	"healthdash/internal/platform/transport"
)

type HTTPStatsGateway struct {
	client *transport.Client
}

func NewHTTPStatsGateway(client *transport.Client) analyticsout.StatsGateway {
	return &HTTPStatsGateway{client: client}
}

func (g *HTTPStatsGateway) Stats(ctx context.Context, username, token string) (domain.Stats, error) {
	return transport.Send[domain.Stats](ctx, g.client, "/analytics/stats/"+url.PathEscape(username), transport.Options{
		Headers: transport.WithAuth(nil, token),
	})
}
