package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// UpstreamStatusError is the cause attached when the commerce backend or the
// payment provider answers with a non-2xx status.
type UpstreamStatusError struct {
	Service string
	Status  int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s status %d", e.Service, e.Status)
}

// UpstreamStatus returns the first upstream status in the chain.
func UpstreamStatus(err error) (*UpstreamStatusError, bool) {
	var statusErr *UpstreamStatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// ErrorDump is the log-only view of an error chain. It may carry fields that
// must never reach a response body.
type ErrorDump struct {
	TopMessage string         `json:"top_message"`
	Code       Code           `json:"code,omitempty"`
	Retryable  bool           `json:"retryable,omitempty"`
	Details    map[string]any `json:"details,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamService string `json:"upstream_service,omitempty"`
	UpstreamStatus  int    `json:"upstream_status,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
		d.Details = detailsMap(te.Details())
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if statusErr, ok := UpstreamStatus(err); ok {
		d.UpstreamService = statusErr.Service
		d.UpstreamStatus = statusErr.Status
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
	}
	return d
}

func detailsMap(details any) map[string]any {
	switch v := details.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	default:
		return map[string]any{"value": v}
	}
}
