package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v84"
)

// ErrorDump flattens an error chain into log fields: the typed code, the
// Postgres diagnostics and the payment gateway response when present.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	Gateway          string `json:"gateway,omitempty"`
	GatewayStatus    int    `json:"gateway_status,omitempty"`
	GatewayCode      string `json:"gateway_code,omitempty"`
	GatewayDecline   string `json:"gateway_decline_code,omitempty"`
	GatewayRequestID string `json:"gateway_request_id,omitempty"`
	GatewayMessage   string `json:"gateway_message,omitempty"`
}

// GatewayError is implemented by gateway clients without an SDK error type.
type GatewayError interface {
	error
	Gateway() string
	GatewayStatus() int
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	dumpPostgres(err, &d)
	dumpGateway(err, &d)
	return d
}

func dumpPostgres(err error, d *ErrorDump) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
	}
}

func dumpGateway(err error, d *ErrorDump) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		d.Gateway = "stripe"
		d.GatewayStatus = stripeErr.HTTPStatusCode
		d.GatewayCode = string(stripeErr.Code)
		d.GatewayDecline = string(stripeErr.DeclineCode)
		d.GatewayRequestID = stripeErr.RequestID
		d.GatewayMessage = stripeErr.Msg
		return
	}

	var gatewayErr GatewayError
	if errors.As(err, &gatewayErr) {
		d.Gateway = gatewayErr.Gateway()
		d.GatewayStatus = gatewayErr.GatewayStatus()
		d.GatewayMessage = gatewayErr.Error()
	}
}
