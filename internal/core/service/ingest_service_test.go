package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/location"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
	"github.com/99minutos/bulk-shipping/internal/core/pricing"
	"github.com/99minutos/bulk-shipping/internal/infrastructure/csvtable"
)

var merchant = domain.Principal{Username: "acme-ops", Role: domain.RoleMerchant, ClientID: "client_1"}

func newTestIngestor(repo ports.BatchRepository, dist ports.DistanceProvider, sink ports.EventSink) *Ingestor {
	return NewIngestor(repo, location.Default(), pricing.NewEngine(pricing.DefaultSchedule()), dist, sink,
		IngestConfig{Workers: 4, DistanceTimeout: 50 * time.Millisecond, DefaultPickup: "Calgary, Alberta, Canada"},
		zerolog.Nop())
}

func row(name, address, size string) domain.RawRow {
	return domain.RawRow{
		domain.ColumnReceiverName: name,
		domain.ColumnPhoneNumber:  "403-555-0100",
		domain.ColumnAddress:      address,
		domain.ColumnPostalCode:   "T2P 1J9",
		domain.ColumnPackageSize:  size,
	}
}

func validRows(n int) []domain.RawRow {
	rows := make([]domain.RawRow, n)
	for i := range rows {
		rows[i] = row(fmt.Sprintf("Receiver %d", i+1), fmt.Sprintf("%d 8 Ave SW, Calgary", 100+i), "1-5kg")
	}
	return rows
}

func table(rows []domain.RawRow) ports.Table {
	return ports.Table{Columns: domain.RequiredColumns(), Rows: rows}
}

// ---------------------------------------------------------------------------
// Wholesale rejections
// ---------------------------------------------------------------------------

func TestIngestor_Ingest_MissingColumns(t *testing.T) {
	repo := newStubBatchRepo()
	svc := newTestIngestor(repo, fixedDistance(3), &stubSink{})

	_, err := svc.Ingest(context.Background(), ports.IngestBatchInput{
		Principal: merchant,
		Table:     ports.Table{Columns: []string{"receiver_name", "address"}, Rows: validRows(12)},
	})
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "phone_number, postal_code, package_size") {
		t.Errorf("error should list the missing columns, got %q", err.Error())
	}
	if len(repo.byCode) != 0 {
		t.Errorf("no batch should be created, found %d", len(repo.byCode))
	}
}

func TestIngestor_Ingest_TooFewRows(t *testing.T) {
	repo := newStubBatchRepo()
	svc := newTestIngestor(repo, fixedDistance(3), &stubSink{})

	_, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: table(validRows(9))})
	if !errors.Is(err, domain.ErrBatchTooSmall) {
		t.Fatalf("expected ErrBatchTooSmall, got %v", err)
	}
	if !strings.Contains(err.Error(), "Your file contains 9 items") {
		t.Errorf("error should carry the row count, got %q", err.Error())
	}
	if len(repo.byCode) != 0 {
		t.Errorf("no batch should be created")
	}
}

func TestIngestor_Ingest_PickupOutOfArea(t *testing.T) {
	repo := newStubBatchRepo()
	svc := newTestIngestor(repo, fixedDistance(3), &stubSink{})

	_, err := svc.Ingest(context.Background(), ports.IngestBatchInput{
		Principal: merchant,
		Table:     table(validRows(10)),
		Pickup:    domain.PickupDetails{Address: "1 Jasper Ave, Edmonton"},
	})
	if !errors.Is(err, domain.ErrOutOfServiceArea) {
		t.Fatalf("expected ErrOutOfServiceArea, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Pickup location error: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(repo.byCode) != 0 {
		t.Errorf("no batch should be created")
	}
}

// ---------------------------------------------------------------------------
// Row pipeline
// ---------------------------------------------------------------------------

func TestIngestor_Ingest_PartialFailure(t *testing.T) {
	rows := validRows(10)
	rows = append(rows,
		row("", "1 Main St, Calgary", "1-5kg"),           // 11: missing receiver
		row("Al", "1 Main St, Calgary", "2kg"),           // 12: bad size
		row("Bo", "1 Main St, Edmonton", "5-15kg"),       // 13: outside area
		row("Cy", "99 Unreachable Rd, Calgary", "1-5kg"), // 14: provider error
	)

	dist := stubDistance{fn: func(_ context.Context, _, dest string) (float64, error) {
		if strings.HasPrefix(dest, "99 Unreachable") {
			return 0, errors.New("no route found")
		}
		return 3, nil
	}}
	repo := newStubBatchRepo()
	sink := &stubSink{}
	svc := newTestIngestor(repo, dist, sink)

	b, err := svc.Ingest(context.Background(), ports.IngestBatchInput{
		Principal:     merchant,
		Table:         table(rows),
		DeliverySpeed: "Express",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if b.Status != domain.BatchPending {
		t.Errorf("expected PENDING, got %s", b.Status)
	}
	if b.OwnerID != "client_1" {
		t.Errorf("expected owner client_1, got %q", b.OwnerID)
	}
	if b.DeliverySpeed != "express" {
		t.Errorf("expected normalized speed express, got %q", b.DeliverySpeed)
	}
	if b.Pickup.Address != "Calgary, Alberta, Canada" {
		t.Errorf("expected default pickup, got %q", b.Pickup.Address)
	}
	if b.TotalShipments != 14 || b.ValidShipments != 10 || b.InvalidShipments != 4 {
		t.Fatalf("unexpected counts %d/%d/%d", b.TotalShipments, b.ValidShipments, b.InvalidShipments)
	}

	for i, it := range b.Items {
		if it.RowNumber != i+1 {
			t.Fatalf("items out of order: position %d has row %d", i, it.RowNumber)
		}
	}

	wantCodes := map[int]string{
		11: "missing_field",
		12: "invalid_weight_class",
		13: "out_of_service_area",
		14: "distance_lookup_failed",
	}
	if len(b.Rejections) != len(wantCodes) {
		t.Fatalf("expected %d rejections, got %d", len(wantCodes), len(b.Rejections))
	}
	for _, rej := range b.Rejections {
		if wantCodes[rej.Row] != rej.Code {
			t.Errorf("row %d: expected %s, got %s (%s)", rej.Row, wantCodes[rej.Row], rej.Code, rej.Reason)
		}
	}
	if b.Rejections[0].Reason != "Missing required fields: receiver_name" {
		t.Errorf("unexpected reason %q", b.Rejections[0].Reason)
	}
	if b.Rejections[3].Reason != "no route found" {
		t.Errorf("provider failure should be reported verbatim, got %q", b.Rejections[3].Reason)
	}

	// bulk small 5.99 + express 4.99, within free distance
	if !b.Totals.TotalFee.Equal(decimal.RequireFromString("109.80")) {
		t.Errorf("expected total 109.80, got %s", b.Totals.TotalFee)
	}
	if got := b.Items[0].DeliveryAddress; got != "100 8 Ave SW, Calgary, Alberta, Canada" {
		t.Errorf("expected normalized address, got %q", got)
	}

	if repo.finalized != 1 {
		t.Errorf("expected one finalize, got %d", repo.finalized)
	}
	if n := sink.count(domain.SubjectBatch); n != 2 {
		t.Errorf("expected PROCESSING and PENDING batch events, got %d", n)
	}
	if len(b.PendingEvents()) != 0 {
		t.Errorf("events should be drained after enqueue")
	}
}

func TestIngestor_Ingest_AllRowsRejected(t *testing.T) {
	rows := make([]domain.RawRow, 10)
	for i := range rows {
		rows[i] = row("R", "1 Main St, Red Deer", "1-5kg")
	}
	repo := newStubBatchRepo()
	svc := newTestIngestor(repo, fixedDistance(3), &stubSink{})

	b, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: table(rows)})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if b.Status != domain.BatchFailed {
		t.Errorf("expected FAILED, got %s", b.Status)
	}
	if !b.Totals.IsZero() {
		t.Errorf("expected zero totals, got %s", b.Totals.TotalFee)
	}
	stored, _ := repo.FindByTrackingCode(context.Background(), b.TrackingCode, "")
	if stored.Status != domain.BatchFailed {
		t.Errorf("stored batch should be FAILED, got %s", stored.Status)
	}
}

func TestIngestor_Ingest_DistanceTimeoutRejectsRow(t *testing.T) {
	rows := validRows(10)
	rows[4] = row("Slow", "7 Slow Lane, Airdrie", "15-30kg")

	dist := stubDistance{fn: func(ctx context.Context, _, dest string) (float64, error) {
		if strings.HasPrefix(dest, "7 Slow Lane") {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 2, nil
	}}
	svc := newTestIngestor(newStubBatchRepo(), dist, &stubSink{})

	b, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: table(rows)})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	slow := b.Items[4]
	if slow.Valid || slow.RejectionCode != "distance_lookup_failed" {
		t.Fatalf("expected timed out row to be rejected, got valid=%v code=%q", slow.Valid, slow.RejectionCode)
	}
	if !strings.Contains(slow.RejectionReason, "timed out") {
		t.Errorf("unexpected reason %q", slow.RejectionReason)
	}
	if b.ValidShipments != 9 {
		t.Errorf("other rows must be unaffected, got %d valid", b.ValidShipments)
	}
}

func TestIngestor_Ingest_InvalidDistanceRejected(t *testing.T) {
	rows := validRows(10)
	dist := stubDistance{fn: func(_ context.Context, _, dest string) (float64, error) {
		if strings.HasPrefix(dest, "100 ") {
			return -4, nil
		}
		return 1, nil
	}}
	svc := newTestIngestor(newStubBatchRepo(), dist, &stubSink{})

	b, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: table(rows)})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if b.Items[0].Valid {
		t.Errorf("negative distance must reject the row")
	}
}

func TestIngestor_Ingest_FinalizeError(t *testing.T) {
	repo := newStubBatchRepo()
	repo.finalizeErr = errors.New("disk full")
	sink := &stubSink{}
	svc := newTestIngestor(repo, fixedDistance(1), sink)

	if _, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: table(validRows(10))}); err == nil {
		t.Fatal("expected finalize error")
	}
	if len(sink.events) != 0 {
		t.Errorf("no events may be published for an unpersisted batch")
	}
	if len(repo.byCode) != 0 {
		t.Errorf("the half-written batch header must be removed, found %d batches", len(repo.byCode))
	}
}

func TestIngestor_Ingest_BlankCellRowCountsAndIsRejected(t *testing.T) {
	var csv strings.Builder
	csv.WriteString(strings.Join(domain.RequiredColumns(), ",") + "\n")
	for i := 1; i <= 9; i++ {
		fmt.Fprintf(&csv, "Receiver %d,403-555-0100,%d 8 Ave SW Calgary,T2P 1J9,1-5kg\n", i, 100+i)
	}
	csv.WriteString(",,,,\n")

	parsed, err := csvtable.Read(strings.NewReader(csv.String()))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	repo := newStubBatchRepo()
	svc := newTestIngestor(repo, fixedDistance(3), &stubSink{})
	batch, err := svc.Ingest(context.Background(), ports.IngestBatchInput{Principal: merchant, Table: parsed})
	if err != nil {
		t.Fatalf("a row of blank cells must not make the batch too small: %v", err)
	}
	if batch.TotalShipments != 10 || batch.ValidShipments != 9 || batch.InvalidShipments != 1 {
		t.Fatalf("unexpected counts total=%d valid=%d invalid=%d",
			batch.TotalShipments, batch.ValidShipments, batch.InvalidShipments)
	}
	if len(batch.Rejections) != 1 || batch.Rejections[0].Row != 10 {
		t.Fatalf("expected row 10 in the rejection list, got %+v", batch.Rejections)
	}
	if batch.Status != domain.BatchPending {
		t.Errorf("expected PENDING, got %s", batch.Status)
	}
}
