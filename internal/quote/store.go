package quote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/quote.works/internal/db"
)

const quoteColumns = `
	id, created_at, updated_at, title, notes, customer_email, source_lang, target_lang,
	country, province, rush, COALESCE(shipping_method_id, ''), status, requires_hitl, currency,
	calc_units, calc_rate, calc_total, billed_units, billed_rate, billed_total,
	breakdown_json, request_json, billed_breakdown_json, billed_request_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var q Quote
	var breakdownJSON, requestJSON, billedBreakdownJSON, billedRequestJSON string
	err := row.Scan(
		&q.ID, &q.CreatedAt, &q.UpdatedAt, &q.Title, &q.Notes, &q.CustomerEmail, &q.SourceLang, &q.TargetLang,
		&q.Country, &q.Province, &q.Rush, &q.ShippingMethodID, &q.Status, &q.RequiresHITL, &q.Currency,
		&q.Ledger.Calc.Units, &q.Ledger.Calc.Rate, &q.Ledger.Calc.Total,
		&q.Ledger.Billed.Units, &q.Ledger.Billed.Rate, &q.Ledger.Billed.Total,
		&breakdownJSON, &requestJSON, &billedBreakdownJSON, &billedRequestJSON,
	)
	if err != nil {
		return Quote{}, err
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &q.Breakdown); err != nil {
		return Quote{}, fmt.Errorf("decode breakdown of quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(requestJSON), &q.Request); err != nil {
		return Quote{}, fmt.Errorf("decode request of quote %s: %w", q.ID, err)
	}
	if billedBreakdownJSON != "" {
		q.Billed = &Snapshot{}
		if err := json.Unmarshal([]byte(billedBreakdownJSON), &q.Billed.Breakdown); err != nil {
			return Quote{}, fmt.Errorf("decode billed breakdown of quote %s: %w", q.ID, err)
		}
		if err := json.Unmarshal([]byte(billedRequestJSON), &q.Billed.Request); err != nil {
			return Quote{}, fmt.Errorf("decode billed request of quote %s: %w", q.ID, err)
		}
	}
	q.Drift = q.Ledger.Drift()
	return q, nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("query quote %s: %w", id, err)
	}
	return q, nil
}

// ListQuotes returns quotes newest first, filtered by title, notes or customer email.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]ListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, title, customer_email, status, requires_hitl, billed_total, calc_total, currency
		FROM quotes
		WHERE (? = '' OR title LIKE ? OR notes LIKE ? OR customer_email LIKE ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	out := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.CustomerEmail, &item.Status,
			&item.RequiresHITL, &item.BilledTotal, &item.CalcTotal, &item.Currency); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertQuote stores a new quote. The billed snapshot starts as the calculated one.
func (s *Store) InsertQuote(ctx context.Context, q Quote) error {
	breakdownJSON, requestJSON, err := encodeSnapshot(q.Breakdown, q.Request)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quotes (
				id, created_at, updated_at, title, notes, customer_email, source_lang, target_lang,
				country, province, rush, shipping_method_id, status, requires_hitl, currency,
				page_count, delivery_days, due_date,
				calc_units, calc_rate, calc_total, billed_units, billed_rate, billed_total,
				breakdown_json, request_json, billed_breakdown_json, billed_request_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			q.ID, q.CreatedAt, q.UpdatedAt, q.Title, q.Notes, q.CustomerEmail, q.SourceLang, q.TargetLang,
			q.Country, q.Province, q.Rush, nullString(q.ShippingMethodID), q.Status, q.RequiresHITL, q.Currency,
			q.Breakdown.PageCount, q.Breakdown.DeliveryDays, q.Breakdown.DueDate,
			q.Ledger.Calc.Units, q.Ledger.Calc.Rate, q.Ledger.Calc.Total,
			q.Ledger.Billed.Units, q.Ledger.Billed.Rate, q.Ledger.Billed.Total,
			breakdownJSON, requestJSON, breakdownJSON, requestJSON,
		); err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
		return insertItems(ctx, tx, q.ID, q.Breakdown.Items)
	})
}

// UpdateQuote rewrites the calculated snapshot and the calc side of the ledger.
// The billed columns are left alone; only Rebill writes them.
func (s *Store) UpdateQuote(ctx context.Context, q Quote) error {
	breakdownJSON, requestJSON, err := encodeSnapshot(q.Breakdown, q.Request)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE quotes
			SET
				updated_at = ?, title = ?, notes = ?, customer_email = ?, source_lang = ?, target_lang = ?,
				country = ?, province = ?, rush = ?, shipping_method_id = ?, requires_hitl = ?, currency = ?,
				page_count = ?, delivery_days = ?, due_date = ?,
				calc_units = ?, calc_rate = ?, calc_total = ?,
				breakdown_json = ?, request_json = ?
			WHERE id = ?
		`,
			q.UpdatedAt, q.Title, q.Notes, q.CustomerEmail, q.SourceLang, q.TargetLang,
			q.Country, q.Province, q.Rush, nullString(q.ShippingMethodID), q.RequiresHITL, q.Currency,
			q.Breakdown.PageCount, q.Breakdown.DeliveryDays, q.Breakdown.DueDate,
			q.Ledger.Calc.Units, q.Ledger.Calc.Rate, q.Ledger.Calc.Total,
			breakdownJSON, requestJSON, q.ID,
		)
		if err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		if err := requireAffected(res, "quote "+q.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM quote_items WHERE quote_id = ?`, q.ID); err != nil {
			return fmt.Errorf("delete quote items: %w", err)
		}
		return insertItems(ctx, tx, q.ID, q.Breakdown.Items)
	})
}

// Rebill copies the calc side and the calculated snapshot onto the billed side
// in a single UPDATE.
func (s *Store) Rebill(ctx context.Context, id string, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			billed_units = calc_units, billed_rate = calc_rate, billed_total = calc_total,
			billed_breakdown_json = breakdown_json, billed_request_json = request_json,
			updated_at = ?
		WHERE id = ?
	`, updatedAt, id)
	if err != nil {
		return fmt.Errorf("rebill quote: %w", err)
	}
	return requireAffected(res, "quote "+id)
}

func insertItems(ctx context.Context, tx *sql.Tx, quoteID string, items []ItemBreakdown) error {
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quote_items (
				id, quote_id, position, document_type, certification_type_id, page_count, words,
				units, rate, subtotal, certification_cost, total
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			uuid.NewString(), quoteID, it.Position, it.DocumentType, nullString(it.CertificationTypeID),
			it.PageCount, it.Words, it.Units, it.Rate, it.Subtotal, it.CertificationCost, it.Total,
		); err != nil {
			return fmt.Errorf("insert quote item %d: %w", it.Position, err)
		}
	}
	return nil
}

func encodeSnapshot(breakdown Breakdown, req Request) (string, string, error) {
	b, err := json.Marshal(breakdown)
	if err != nil {
		return "", "", fmt.Errorf("encode breakdown: %w", err)
	}
	r, err := json.Marshal(req)
	if err != nil {
		return "", "", fmt.Errorf("encode request: %w", err)
	}
	return string(b), string(r), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
