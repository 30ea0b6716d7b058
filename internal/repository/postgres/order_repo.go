// internal/repository/postgres/order_repo.go
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/basharmd94/orderapp-sub000/internal/domain/order"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/invoice"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateOrder persists one order as a set of opmob lines sharing a freshly
// generated invoice number. Each call runs in its own transaction so
// concurrent bulk workers never share connection state; an order either
// lands whole or not at all.
func (r *OrderRepository) CreateOrder(ctx context.Context, zid int64, spec *order.Spec, actor *order.Actor) (*order.Result, error) {
	serial := invoice.RandomSerial(invoice.SerialLength)
	invoiceSL, err := strconv.ParseInt(serial, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice serial: %w", err)
	}
	invoiceNo := actor.Terminal + "-" + invoice.Format(serial)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, item := range spec.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO opmob (
				zid, ztime, zutime, invoiceno, invoicesl, username, xemp,
				xcus, xcusname, xcusadd, xitem, xdesc, xqty, xprice,
				xroword, xterminal, xdate, xsl, xlat, xlong, xlinetotal
			) VALUES (
				$1, $2, $2, $3, $4, $5, $6,
				$7, $8, $9, $10, $11, $12, $13,
				$14, $15, $16, $17, $18, $19, $20
			)
		`, zid, now, invoiceNo, invoiceSL, actor.Username, actor.EmployeeCode,
			spec.Xcus, spec.XcusName, spec.XcusAdd, item.Xitem, item.Xdesc,
			item.Xqty, item.Xprice, item.XrowOrd, actor.Terminal, now,
			ulid.Make().String(), item.Xlat, item.Xlong, item.XlineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &order.Result{
		Xcus:      spec.Xcus,
		InvoiceNo: invoiceNo,
		Lines:     len(spec.Items),
		Succeeded: true,
	}, nil
}

// ListByInvoice fetches the lines of one invoice within a business unit.
func (r *OrderRepository) ListByInvoice(ctx context.Context, zid int64, invoiceNo string) ([]*order.Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, zid, ztime, zutime, invoiceno, invoicesl, username, xemp,
		       xcus, xcusname, xcusadd, xitem, xdesc, xqty, xprice,
		       xroword, xterminal, xdate, xsl, xlat, xlong, xlinetotal
		FROM opmob
		WHERE zid = $1 AND invoiceno = $2
		ORDER BY xroword, id
	`, zid, invoiceNo)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []*order.Line
	for rows.Next() {
		var l order.Line
		err := rows.Scan(
			&l.ID, &l.ZID, &l.CreatedAt, &l.UpdatedAt, &l.InvoiceNo, &l.InvoiceSL,
			&l.Username, &l.Xemp, &l.Xcus, &l.XcusName, &l.XcusAdd, &l.Xitem,
			&l.Xdesc, &l.Xqty, &l.Xprice, &l.XrowOrd, &l.Xterminal, &l.Xdate,
			&l.Xsl, &l.Xlat, &l.Xlong, &l.XlineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// ListByUsername fetches a user's recent order lines within a business unit.
func (r *OrderRepository) ListByUsername(ctx context.Context, zid int64, username string, limit int) ([]*order.Line, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, zid, ztime, zutime, invoiceno, invoicesl, username, xemp,
		       xcus, xcusname, xcusadd, xitem, xdesc, xqty, xprice,
		       xroword, xterminal, xdate, xsl, xlat, xlong, xlinetotal
		FROM opmob
		WHERE zid = $1 AND username = $2
		ORDER BY ztime DESC
		LIMIT $3
	`, zid, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var lines []*order.Line
	for rows.Next() {
		var l order.Line
		err := rows.Scan(
			&l.ID, &l.ZID, &l.CreatedAt, &l.UpdatedAt, &l.InvoiceNo, &l.InvoiceSL,
			&l.Username, &l.Xemp, &l.Xcus, &l.XcusName, &l.XcusAdd, &l.Xitem,
			&l.Xdesc, &l.Xqty, &l.Xprice, &l.XrowOrd, &l.Xterminal, &l.Xdate,
			&l.Xsl, &l.Xlat, &l.Xlong, &l.XlineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}
