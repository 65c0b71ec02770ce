package adapter

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// AuditSink receives claim audit events for long-term analysis.
type AuditSink interface {
	InsertAuditEvent(ctx context.Context, ev *model.AuditEvent) error
}

type bigqueryClient struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// auditRow is the BigQuery schema of one audit event.
type auditRow struct {
	ClaimID    string    `bigquery:"claim_id"`
	Action     string    `bigquery:"action"`
	Actor      string    `bigquery:"actor"`
	PrevStatus string    `bigquery:"prev_status"`
	NextStatus string    `bigquery:"next_status"`
	OccurredAt time.Time `bigquery:"occurred_at"`
}

// NewBigQueryAuditSink creates an AuditSink streaming events into the
// given dataset table.
func NewBigQueryAuditSink(ctx context.Context, projectID, dataset, table string) (AuditSink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return &bigqueryClient{
		client:  client,
		dataset: dataset,
		table:   table,
	}, nil
}

func (bq *bigqueryClient) InsertAuditEvent(ctx context.Context, ev *model.AuditEvent) error {
	inserter := bq.client.Dataset(bq.dataset).Table(bq.table).Inserter()

	row := &auditRow{
		ClaimID:    string(ev.ClaimID),
		Action:     string(ev.Action),
		Actor:      ev.Actor,
		PrevStatus: string(ev.PrevStatus),
		NextStatus: string(ev.NextStatus),
		OccurredAt: ev.OccurredAt,
	}
	if err := inserter.Put(ctx, row); err != nil {
		return goerr.Wrap(err, "failed to insert audit event", goerr.V("claim_id", ev.ClaimID))
	}
	return nil
}
