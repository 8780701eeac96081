package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"healthdash/internal/modules/records/domain"
	recordsout "healthdash/internal/modules/records/port/out"
	"healthdash/internal/platform/transport"
)

const basePath = "/health/data"

type HTTPRecordGateway struct {
	client *transport.Client
}

func NewHTTPRecordGateway(client *transport.Client) recordsout.RecordGateway {
	return &HTTPRecordGateway{client: client}
}

func recordPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}

func (g *HTTPRecordGateway) List(ctx context.Context, username, token string) ([]domain.HealthRecord, error) {
	query := url.Values{}
	query.Set("username", username)
	records, err := transport.Send[[]domain.HealthRecord](ctx, g.client, basePath+"?"+query.Encode(), transport.Options{
		Headers: transport.WithAuth(nil, token),
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.HealthRecord{}
	}
	return records, nil
}

func (g *HTTPRecordGateway) Get(ctx context.Context, id int64, token string) (domain.HealthRecord, error) {
	return transport.Send[domain.HealthRecord](ctx, g.client, recordPath(id), transport.Options{
		Headers: transport.WithAuth(nil, token),
	})
}

func (g *HTTPRecordGateway) Create(ctx context.Context, draft domain.Draft, token string) (domain.HealthRecord, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return domain.HealthRecord{}, fmt.Errorf("encode record: %w", err)
	}
	return transport.Send[domain.HealthRecord](ctx, g.client, basePath, transport.Options{
		Method:  http.MethodPost,
		Headers: transport.WithAuth(nil, token),
		Body:    body,
	})
}

func (g *HTTPRecordGateway) Update(ctx context.Context, id int64, patch domain.Patch, token string) (domain.HealthRecord, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return domain.HealthRecord{}, fmt.Errorf("encode record patch: %w", err)
	}
	return transport.Send[domain.HealthRecord](ctx, g.client, recordPath(id), transport.Options{
		Method:  http.MethodPatch,
		Headers: transport.WithAuth(nil, token),
		Body:    body,
	})
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (g *HTTPRecordGateway) Delete(ctx context.Context, id int64, token string) (string, error) {
	resp, err := transport.Send[deleteResponse](ctx, g.client, recordPath(id), transport.Options{
		Method:  http.MethodDelete,
		Headers: transport.WithAuth(nil, token),
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
