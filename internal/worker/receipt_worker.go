package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the PDF receipt for a
// committed sale and, when the customer left an email, chains an email job.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID        string `json:"sale_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	sales       repository.SaleRepository
	dispatcher  *Dispatcher
	storagePath string
	storeName   string
}

func NewReceiptWorker(sales repository.SaleRepository, dispatcher *Dispatcher, storagePath, storeName string) *ReceiptWorker {
	return &ReceiptWorker{
		sales:       sales,
		dispatcher:  dispatcher,
		storagePath: storagePath,
		storeName:   storeName,
	}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale id")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %s: %w", payload.SaleID, err)
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.storagePath, w.storeName)
	if err != nil {
		return fmt.Errorf("receipt_worker: render pdf: %w", err)
	}
	log.Info().Str("sale_id", payload.SaleID).Str("path", pdfPath).Msg("receipt_worker: receipt generated")

	if payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: payload.CustomerEmail,
			Subject: fmt.Sprintf("%s — your receipt", w.storeName),
			Body:    "Thank you for your purchase. Your receipt is attached.",
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Error().Err(err).Str("to", payload.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
	return nil
}
